package emulator

import "github.com/seal9055/sfuzz/internal/coverage"

// OutcomeKind classifies how a fuzz case ended, spec.md §4.7's
// run_case contract: "{OK, timeout, crash(kind, pc, addr), new_coverage(edges_delta)}".
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeTimeout
	OutcomeCrash
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "OK"
	case OutcomeTimeout:
		return "TIMEOUT"
	case OutcomeCrash:
		return "CRASH"
	default:
		return "UNKNOWN"
	}
}

// Outcome is what RunCase returns for one fuzz case.
type Outcome struct {
	Kind     OutcomeKind
	Crash    coverage.Crash // valid only when Kind == OutcomeCrash
	NewEdges int            // number of 0->1 coverage transitions this case caused
	Instrs   uint64         // instructions retired this case, for calibration/statistics
}
