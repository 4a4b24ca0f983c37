package jit

import "github.com/seal9055/sfuzz/internal/ir"

// Reserved host registers for the life of a JIT entry, per
// SPEC_FULL.md §4.3. Scratch registers (rax, rbx, rcx, rdx, rsi, rdi)
// are free for use within the translation of a single IR instruction
// and never carry a value across an IR instruction boundary.
const (
	regMemBase     = r13 // guest memory base pointer
	regPermBase    = r12 // guest permission-byte base pointer
	regRegFile     = r14 // guest register-file base pointer
	regTransTable  = r15 // translation-table base pointer (unused directly by
	                      // emitted code today; intra-function control flow is
	                      // resolved at compile time, reserved for future
	                      // inline-lookup fast paths)
	regDirtyBitmap = r11 // dirty bitmap base pointer
	regDirtyVec    = r10 // dirty vector append-cursor pointer
	regCoverage    = r9  // coverage map base pointer
	regExitInfo    = rbp // pointer to the 5-word exit-info block (code, pc, aux, instruction count, budget)
)

// scratchA/B/C/D are the four general-purpose scratch registers used
// to translate a single IR instruction. rsi/rdi remain available as
// extra scratch for instructions that need a fifth operand (loads and
// stores use them to hold the permission-check comparand).
const (
	scratchA = rax
	scratchB = rbx
	scratchC = rcx
	scratchD = rdx
	scratchE = rsi
	scratchF = rdi
)

// numGuestRegs duplicates emulator.NumRegs (importing the emulator
// package here would cycle back through jit) so regFileOffset can
// place the lifter's scratch pseudo-registers past the end of the
// real x-register array instead of aliasing it.
const numGuestRegs = 32

// regFileOffset returns the byte offset of r within the memory-mapped
// register file (spec.md §4.3's "memory mapped pointer" convention --
// every slot is 8 bytes). Real guest registers (r.IsScratch == false)
// occupy [0, numGuestRegs*8); ir.Scratch pseudo-registers -- used by
// the lifter for intermediate values within a single guest
// instruction's expansion, e.g. JALR's jump target -- get disjoint
// storage immediately past them, so a scratch value can never alias
// a real register's slot the way aliasing x1/ra once did.
func regFileOffset(r ir.Reg) int32 {
	if r.IsScratch {
		return int32(numGuestRegs)*8 + int32(r.Index)*8
	}
	return int32(r.Index) * 8
}
