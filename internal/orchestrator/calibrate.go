package orchestrator

import (
	"fmt"

	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/emulator"
)

// Calibrate runs every seed currently in corpus once, records its
// instruction count as that seed's ExecTime, and derives the per-case
// instruction budget as the configured multiplier times the average
// (original_source/lib.rs's calibrate_seeds). override, if nonzero,
// replaces the derived budget outright (-t).
//
// Calibration runs happen before any worker starts mutating, so they
// share prog's coverage map and code cache like any other case; the
// caller resets the coverage map afterwards (corpus.reset_coverage in
// the original) so seeds get credit for "first to hit this edge" once
// real fuzzing starts.
func Calibrate(e *emulator.Emulator, prog *emulator.Program, corpus *Corpus, override uint64) error {
	n := corpus.Len()
	if n == 0 {
		return fmt.Errorf("orchestrator: calibrate: corpus is empty")
	}

	var total uint64
	for i := 0; i < n; i++ {
		in := corpus.At(i)
		outcome, err := e.RunCase(in.Data)
		if err != nil {
			return fmt.Errorf("orchestrator: calibrate seed %d: %w", i, err)
		}
		corpus.SetExecTime(i, outcome.Instrs)
		total += outcome.Instrs
	}

	budget := (total / uint64(n)) * config.DefaultTimeoutMultiplier
	if override != 0 {
		budget = override
	}
	prog.InstrBudget = budget
	prog.Coverage.Reset()
	return nil
}
