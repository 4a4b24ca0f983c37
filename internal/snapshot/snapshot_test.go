//go:build linux && amd64

package snapshot

import (
	"testing"

	"github.com/seal9055/sfuzz/internal/codecache"
	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/emulator"
	"github.com/seal9055/sfuzz/internal/mmu"
	"github.com/stretchr/testify/require"
)

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

const opADDI = 0x13

func newWarmupEmulator(t *testing.T) (*emulator.Emulator, *emulator.Program) {
	t.Helper()
	cache, err := codecache.New(64*1024, 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	cov := coverage.New(4096, config.CoverageBlock)
	prog := emulator.NewProgram(cache, cov, false, false)

	e, err := emulator.NewEmulator(prog, 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Mem.Close() })

	require.NoError(t, e.Mem.SetPermissions(0, 0x20, mmu.PermRead|mmu.PermExec))
	return e, prog
}

// TestWarmupStopsAtSnapshotPC loads a three-instruction prologue, sets
// the snapshot point at the third instruction, and verifies the
// captured state reflects only the first two having executed, and that
// Program.SetMaster was installed so resets return to it.
func TestWarmupStopsAtSnapshotPC(t *testing.T) {
	e, prog := newWarmupEmulator(t)

	code := []uint32{
		encodeI(opADDI, 1, 0, 0, 5), // addi x1, x0, 5
		encodeI(opADDI, 2, 0, 0, 7), // addi x2, x0, 7
		encodeI(opADDI, 3, 0, 0, 9), // addi x3, x0, 9 (never runs before snapshot)
	}
	for i, w := range code {
		require.NoError(t, e.Mem.LoadBytes(uint64(i*4), le32(w)))
	}
	e.Regs.SetPC(0)
	prog.SnapshotAt(0x8) // stop right before the third instruction

	snap, err := Warmup(e, prog)
	require.NoError(t, err)
	require.EqualValues(t, 0x8, snap.PC)
	require.EqualValues(t, 5, snap.Regs.Get(1))
	require.EqualValues(t, 7, snap.Regs.Get(2))
	require.EqualValues(t, 0, snap.Regs.Get(3))
}

// TestResetAfterWarmupRestoresMaster proves a case that clobbers a
// register and advances memory beyond the snapshot gets rolled back by
// the next RunCase's reset, using the emulator package's own reset
// path rather than reaching into internals.
func TestResetAfterWarmupRestoresMaster(t *testing.T) {
	e, prog := newWarmupEmulator(t)

	code := []uint32{
		encodeI(opADDI, 1, 0, 0, 42), // addi x1, x0, 42
	}
	require.NoError(t, e.Mem.LoadBytes(0, le32(code[0])))
	e.Regs.SetPC(0)
	prog.SnapshotAt(0x4)

	_, err := Warmup(e, prog)
	require.NoError(t, err)

	// Mutate x1 outside of RunCase, simulating leftover state from a
	// prior fuzz case that hasn't been reset yet.
	e.Regs.Set(1, 999)
	require.EqualValues(t, 999, e.Regs.Get(1))

	// A fresh RunCase starting at the snapshot PC should restore x1 to
	// the master's value before running anything further.
	e.Regs.SetPC(0x4)
	_, _ = e.RunCase(nil)
	require.EqualValues(t, 42, e.Regs.Get(1))
}
