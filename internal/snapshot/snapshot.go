// Package snapshot drives the one-time warm-up run spec.md §4.6
// describes: run the target from its real entry point up to a
// configured PC, then freeze a deep copy of its register file and
// address space as the master image every fuzz case resets from.
//
// This mirrors the teacher's EmulatorSnapShot/TakeSnapShot pattern
// (_teacher_ref/pvm/recompiler/recompiler_sandbox.go), adapted from a
// Unicorn-backed sandbox capturing dirty pages to this module's own
// MMU/RegisterFile clone-based capture.
package snapshot

import (
	"fmt"

	"github.com/seal9055/sfuzz/internal/emulator"
	"github.com/seal9055/sfuzz/internal/mmu"
)

// Snapshot is the frozen image of a target at its fuzzing start state:
// everything a fresh Emulator needs to be reset to before each case.
type Snapshot struct {
	PC   uint64
	Mem  *mmu.Mmu
	Regs *emulator.RegisterFile
}

// Warmup runs e from its current register/memory state (normally a
// freshly loaded ELF image) up to prog.SnapshotPC, using the ordinary
// dispatcher loop, then captures the resulting state as the master
// snapshot and installs it on prog via Program.SetMaster (spec.md
// §4.6: "the dispatcher runs the target until it reaches [the
// snapshot] PC ... a copy of the resulting state becomes the
// master").
//
// If prog.SnapshotPC is zero, the snapshot is taken immediately, at
// whatever state e already holds -- the "snapshot at entry" case.
func Warmup(e *emulator.Emulator, prog *emulator.Program) (*Snapshot, error) {
	if prog.SnapshotPC != 0 {
		prevExitPC := prog.ExitPC
		prog.ExitPC = prog.SnapshotPC
		outcome, err := e.RunCase(nil)
		prog.ExitPC = prevExitPC
		if err != nil {
			return nil, fmt.Errorf("snapshot: warm-up run: %w", err)
		}
		if outcome.Kind != emulator.OutcomeOK {
			return nil, fmt.Errorf("snapshot: warm-up run ended in %v before reaching PC %#x", outcome.Kind, prog.SnapshotPC)
		}
	}

	mem, regs, err := Capture(e)
	if err != nil {
		return nil, err
	}
	prog.SetMaster(mem, regs)
	return &Snapshot{PC: e.Regs.PC(), Mem: mem, Regs: regs}, nil
}

// Capture deep-copies e's address space and register file, independent
// of Warmup so callers needing an ad-hoc checkpoint (e.g. triage
// re-snapshotting after a crashing input) don't have to fake a PC to
// stop at.
func Capture(e *emulator.Emulator) (*mmu.Mmu, *emulator.RegisterFile, error) {
	mem, err := e.Mem.Clone()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot: clone memory: %w", err)
	}
	return mem, e.Regs.Clone(), nil
}
