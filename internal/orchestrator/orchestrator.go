package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/seal9055/sfuzz/internal/emulator"
	"github.com/seal9055/sfuzz/internal/log"
)

// Orchestrator is the top-level object cmd/sfuzz's fuzz command builds:
// it owns the shared Program, the Corpus every worker mutates against,
// and the statistics-aggregation loop, mirroring the responsibilities
// original_source/src/main.rs's main() carries after CLI parsing
// (spec.md §4.7's orchestrator contract plus the ambient run-id/output
// layout this repository adds).
type Orchestrator struct {
	Prog    *emulator.Program
	Corpus  *Corpus
	OutDir  string
	Threads int

	RunID uuid.UUID

	log log.Logger
}

// New wires an Orchestrator around an already-constructed Program
// (code cache, coverage map, hooks, and syscalls installed) and an
// output directory that will receive crashes/ and queue/ subdirectories.
func New(prog *emulator.Program, outDir string, threads int) *Orchestrator {
	if threads < 1 {
		threads = 1
	}
	id := uuid.New()
	return &Orchestrator{
		Prog:    prog,
		Corpus:  NewCorpus(),
		OutDir:  outDir,
		Threads: threads,
		RunID:   id,
		log:     log.Root.With("run_id", id.String()),
	}
}

// LoadSeeds reads every regular file in dir into the corpus as an
// uncalibrated Input (main.rs's "Initialize corpus with files from
// input directory").
func (o *Orchestrator) LoadSeeds(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("orchestrator: read seed dir %s: %w", dir, err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return fmt.Errorf("orchestrator: read seed %s: %w", ent.Name(), err)
		}
		o.Corpus.Add(NewInput(data))
	}
	if o.Corpus.Len() == 0 {
		return fmt.Errorf("orchestrator: %s contains no seed files", dir)
	}
	return nil
}

// Run calibrates against calibEmu, then spawns Threads workers (each
// built by newEmu, which the caller supplies so every worker gets its
// own Emulator sharing o.Prog), and aggregates statistics until either
// maxCases is reached (0 disables the limit) or stop is closed
// externally (e.g. by a SIGINT handler in cmd/sfuzz).
func (o *Orchestrator) Run(calibEmu *emulator.Emulator, newEmu func() (*emulator.Emulator, error), dict [][]byte, timeoutOverride, maxCases uint64, stop <-chan struct{}) (Statistics, error) {
	if err := Calibrate(calibEmu, o.Prog, o.Corpus, timeoutOverride); err != nil {
		return Statistics{}, err
	}
	o.log.Info("orchestrator", "calibration complete", "instr_budget", o.Prog.InstrBudget, "seeds", o.Corpus.Len())

	statsCh := make(chan Statistics, o.Threads)
	workerStop := make(chan struct{})

	for i := 0; i < o.Threads; i++ {
		emu, err := newEmu()
		if err != nil {
			close(workerStop)
			return Statistics{}, fmt.Errorf("orchestrator: spawn worker %d: %w", i, err)
		}
		w := NewWorker(i, emu, o.Prog, o.Corpus, dict)
		w.OutDir = o.OutDir
		go w.Run(statsCh, workerStop)
	}

	var total Statistics
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			close(workerStop)
			o.persistQueue()
			return total, nil

		case batch := <-statsCh:
			total.Add(batch)
			if maxCases != 0 && total.TotalCases >= maxCases {
				close(workerStop)
				o.persistQueue()
				return total, nil
			}

		case <-ticker.C:
			o.log.Info("orchestrator", "stats",
				"cases", total.TotalCases,
				"crashes", total.Crashes,
				"ucrashes", total.UCrashes,
				"coverage", total.Coverage,
				"timeouts", total.Timeouts,
				"instr_count", total.InstrCount,
			)
		}
	}
}

// persistQueue writes every corpus entry, the loaded seed files and
// everything discovered during fuzzing, to OutDir/queue, so a run
// that's stopped doesn't throw its discovered inputs away -- something
// original_source's worker() never needed to do since it ran until
// killed with no persistence step of its own.
func (o *Orchestrator) persistQueue() {
	if o.OutDir == "" {
		return
	}
	dir := filepath.Join(o.OutDir, "queue")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		o.log.Warn("orchestrator", "failed to create queue dir", "err", err)
		return
	}
	n := o.Corpus.Len()
	for i := 0; i < n; i++ {
		in := o.Corpus.At(i)
		name := fmt.Sprintf("id_%06d_%d", i, xxhash.Sum64(in.Data))
		if err := os.WriteFile(filepath.Join(dir, name), in.Data, 0o644); err != nil {
			o.log.Warn("orchestrator", "failed to write queue entry", "name", name, "err", err)
		}
	}
}
