// Command sfuzz is a coverage-guided, emulation-based greybox fuzzer
// for RV64I user-mode ELF binaries: a single-pass JIT translates guest
// code to host machine code once per function, a byte-granular
// permission-tagged MMU enforces memory safety, and a snapshot/reset
// loop drives fuzzing cases through it at native speed.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sfuzz",
		Short: "coverage-guided emulation-based fuzzer for RV64I binaries",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newFuzzCmd())
	rootCmd.AddCommand(newTriageCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
