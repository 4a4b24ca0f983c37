package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/orchestrator"
	"github.com/seal9055/sfuzz/internal/snapshot"
	"github.com/spf13/cobra"
)

// newFuzzCmd implements `sfuzz fuzz -i <in-dir> -o <out-dir> -s <pc>
// -t <count> -d <file> -j <n> -- <target> <args...>`, matching
// spec.md's CLI contract, the Go equivalent of main.rs's main() body
// after CLI parsing: load the ELF, set up the stack, warm up to the
// snapshot PC, calibrate seeds, spawn workers, and run until a SIGINT
// or SIGTERM tells the run to stop cleanly.
func newFuzzCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "fuzz -- <target> <args...>",
		Short: "run the coverage-guided fuzzing loop against a target",
		RunE: func(cmd *cobra.Command, args []string) error {
			dashAt := cmd.ArgsLenAtDash()
			if dashAt < 0 || dashAt >= len(args) {
				fmt.Fprintln(os.Stderr, "sfuzz fuzz: no target specified after --")
				os.Exit(1)
			}
			targetArgs := args[dashAt:]
			cfg.TargetPath = targetArgs[0]
			cfg.TargetArgs = targetArgs

			if cfg.InDir == "" {
				fmt.Fprintln(os.Stderr, "sfuzz fuzz: -i <in-dir> is required")
				os.Exit(1)
			}

			t, err := buildTarget(cfg.TargetPath, cfg.TargetArgs, cfg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			if _, err := snapshot.Warmup(t.primary, t.prog); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			orch := orchestrator.New(t.prog, cfg.OutDir, cfg.Threads)
			if err := orch.LoadSeeds(cfg.InDir); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			var dict [][]byte
			if cfg.DictPath != "" {
				dict, err = orchestrator.LoadDictionary(cfg.DictPath)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
			}

			stop := make(chan struct{})
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				close(stop)
			}()

			stats, err := orch.Run(t.primary, t.newEmulator, dict, cfg.InstrTimeout, 0, stop)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			fmt.Printf("cases=%d crashes=%d unique_crashes=%d coverage=%d timeouts=%d instrs=%d\n",
				stats.TotalCases, stats.Crashes, stats.UCrashes, stats.Coverage, stats.Timeouts, stats.InstrCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.InDir, "in-dir", "i", "", "seed corpus directory")
	cmd.Flags().StringVarP(&cfg.OutDir, "out-dir", "o", "", "output directory for crashes/ and queue/")
	cmd.Flags().Uint64VarP(&cfg.SnapshotPC, "snapshot-pc", "s", 0, "guest PC to snapshot at (0 = entry)")
	cmd.Flags().Uint64VarP(&cfg.InstrTimeout, "timeout", "t", 0, "instruction-count timeout override (0 = calibrate)")
	cmd.Flags().StringVarP(&cfg.DictPath, "dict", "d", "", "mutator dictionary file")
	cmd.Flags().IntVarP(&cfg.Threads, "jobs", "j", cfg.Threads, "number of parallel fuzzing worker threads")
	cmd.Flags().BoolVar(&cfg.CmpCov, "cmpcov", cfg.CmpCov, "enable compare-coverage instrumentation")
	cmd.Flags().BoolVar(&cfg.CallStackCoverage, "callstack-coverage", cfg.CallStackCoverage, "mix call-stack hash into the edge index")

	return cmd
}
