package orchestrator

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/emulator"
)

// crashFilePrefix names the crash-file kind components
// original_source/lib.rs's worker() writes (read_/write_/exec_/oob_),
// extended with the two fault kinds this repo's MMU additionally
// distinguishes.
func crashFilePrefix(k coverage.CrashKind) string {
	switch k {
	case coverage.CrashRead:
		return "read"
	case coverage.CrashWrite:
		return "write"
	case coverage.CrashExec:
		return "exec"
	case coverage.CrashInvalidFree:
		return "invalid_free"
	case coverage.CrashIllegalInstruction:
		return "illegal_insn"
	default:
		return "oob"
	}
}

// Worker is one thread's private fuzzing loop state: its own Emulator,
// a reference to the shared Program and Corpus, a private Mutator (so
// no thread ever contends on rand.Rand), and the crash directory it
// writes first-occurrence crash files into.
type Worker struct {
	ID      int
	Emu     *emulator.Emulator
	Prog    *emulator.Program
	Corpus  *Corpus
	Mutator *Mutator
	OutDir  string

	inputIndex int
}

// NewWorker builds a worker around its own emulator, sharing prog and
// corpus with every other worker in the run.
func NewWorker(id int, emu *emulator.Emulator, prog *emulator.Program, corpus *Corpus, dict [][]byte) *Worker {
	return &Worker{
		ID:      id,
		Emu:     emu,
		Prog:    prog,
		Corpus:  corpus,
		Mutator: NewMutator(rand.New(rand.NewSource(int64(id)+1)), dict),
	}
}

// Run drives this worker's infinite fuzzing loop (original_source's
// worker()), sending a Statistics batch to statsCh after each seed's
// energy budget is exhausted, until stop is closed.
func (w *Worker) Run(statsCh chan<- Statistics, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		n := w.Corpus.Len()
		if n == 0 {
			return
		}
		w.inputIndex = (w.inputIndex + 1) % n
		energy := w.Corpus.Energy(w.inputIndex)

		var batch Statistics
		for i := 0; i < energy; i++ {
			if fatal := w.runOneCase(&batch); fatal {
				batch.TotalCases = uint64(i + 1)
				statsCh <- batch
				return
			}
		}
		batch.TotalCases = uint64(energy)
		statsCh <- batch
	}
}

// runOneCase mutates the currently selected seed, runs it, classifies
// the outcome, and folds the result into batch -- the body of lib.rs
// worker()'s inner `for _ in 0..seed_energy` loop. It reports true if
// the case hit a fatal, process-terminal error (e.g. code cache
// exhaustion), telling Run to stop this worker rather than spin
// retrying a condition that can never resolve itself.
func (w *Worker) runOneCase(batch *Statistics) bool {
	seed := w.Corpus.At(w.inputIndex)
	fuzzed := w.Mutator.Mutate(seed.Data)

	outcome, err := w.Emu.RunCase(fuzzed)
	if err != nil {
		return true
	}

	var crashed, unique bool
	switch outcome.Kind {
	case emulator.OutcomeCrash:
		crashed = true
		unique = w.Prog.Crashes.Record(outcome.Crash)
		if unique {
			w.writeCrashFile(outcome.Crash, fuzzed)
			batch.UCrashes++
		}
		batch.Crashes++

	case emulator.OutcomeTimeout:
		batch.Timeouts++
	}

	batch.InstrCount += outcome.Instrs
	if outcome.NewEdges > 0 {
		batch.Coverage += outcome.NewEdges
	}

	w.Corpus.RecordOutcome(w.inputIndex, crashed, unique, outcome.NewEdges, fuzzed, outcome.Instrs)
	return false
}

// writeCrashFile saves input the first time (kind, pc) is seen, named
// "<kind>_<pc in hex>_<xxhash of input>" under OutDir/crashes, matching
// original_source/lib.rs's format string.
func (w *Worker) writeCrashFile(c coverage.Crash, input []byte) {
	if w.OutDir == "" {
		return
	}
	dir := filepath.Join(w.OutDir, "crashes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	name := fmt.Sprintf("%s_%x_%d", crashFilePrefix(c.Kind), c.PC, xxhash.Sum64(input))
	_ = os.WriteFile(filepath.Join(dir, name), input, 0o644)
}
