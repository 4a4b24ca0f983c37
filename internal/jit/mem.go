package jit

import (
	"github.com/seal9055/sfuzz/internal/ir"
	"github.com/seal9055/sfuzz/internal/mmu"
)

// emitLoad translates an ir.OpLoad into a permission-checked host
// load. The address is computed at run time (Src1's register value is
// only known when the guest runs), so every load costs one permission
// byte read and a conditional exit in addition to the load itself --
// spec.md §4 describes this as inherent to byte-granular permissions,
// not an optimization target (the "Non-goals" rule out an optimizing
// JIT that might otherwise hoist or batch these checks).
func (c *Compiler) emitLoad(a *asm, inst ir.Instruction) {
	addr := scratchA
	a.loadMem64(addr, regRegFile, regFileOffset(inst.Src1))
	a.movImm64(scratchB, uint64(inst.Imm))
	a.aluRegReg(aluAdd, addr, scratchB, false)

	c.emitPermCheck(a, addr, mmu.PermRead, mmu.KindRead, inst.PC)

	if inst.Dst.IsZero() {
		return
	}
	a.loadMemIndexedWidth(scratchC, regMemBase, addr, int(inst.Width), inst.SignExtend)
	a.storeMem(regRegFile, regFileOffset(inst.Dst), scratchC, 8)
}

// emitStore translates an ir.OpStore, adding the dirty-tracking update
// spec.md §4 requires for Reset to restore only what actually changed.
// RAW (read-after-write) upgrade -- a write makes the byte newly
// readable -- is the MMU's job at the interpreter boundary (mmu.Write);
// compiled stores only need the Write permission bit, matching
// mmu.Mmu.Write's own check.
func (c *Compiler) emitStore(a *asm, inst ir.Instruction) {
	addr := scratchA
	a.loadMem64(addr, regRegFile, regFileOffset(inst.Src1))
	a.movImm64(scratchB, uint64(inst.Imm))
	a.aluRegReg(aluAdd, addr, scratchB, false)

	c.emitPermCheck(a, addr, mmu.PermWrite, mmu.KindWrite, inst.PC)

	a.loadMem64(scratchC, regRegFile, regFileOffset(inst.Src2))
	a.storeMemIndexed(regMemBase, addr, scratchC, int(inst.Width))
	c.emitMarkDirty(a, addr)
}

// emitPermCheck loads the permission byte at [regPermBase+addr] and
// exits with ExitFault(kind) when the required bit is unset. addr is
// clobbered by neither this call nor the check (it is read, not
// written), since the caller still needs it for the load/store proper.
func (c *Compiler) emitPermCheck(a *asm, addr byte, required mmu.Perm, kind mmu.Kind, pc uint64) {
	a.loadMemIndexedWidth(scratchD, regPermBase, addr, 1, false)
	a.movImm64(scratchE, uint64(required))
	a.aluRegReg(aluAnd, scratchD, scratchE, false)
	okOffset := a.jccRel32(ccNE)

	// fault path: aux = (addr << 8) | kind, computed on a copy of addr
	// so the caller's copy survives if we ever fall through (we don't;
	// this path always exits).
	a.movRegReg(scratchD, addr)
	a.b(rex(true, false, false, scratchD >= 8), 0xC1, modrm(3, 4, scratchD), 8) // shl scratchD, 8
	a.movImm64(scratchE, uint64(kind))
	a.aluRegReg(aluOr, scratchD, scratchE, false)
	a.emitExitAuxReg(pc, ExitFault, scratchD)

	patchRel32(a.buf, okOffset, a.len())
}

// scratchG is a seventh scratch register for the handful of
// translations (dirty tracking) that run out of the usual six.
const scratchG = r8

// shlImm8/shrImm8 emit `shl/shr reg, imm8` (REX.W C1 /sub ib).
func (a *asm) shlImm8(reg byte, imm byte) {
	a.b(rex(true, false, false, reg >= 8), 0xC1, modrm(3, 4, reg), imm)
}
func (a *asm) shrImm8(reg byte, imm byte) {
	a.b(rex(true, false, false, reg >= 8), 0xC1, modrm(3, 5, reg), imm)
}

// emitMarkDirty sets addr's page in the dirty bitmap and, the first
// time a page is touched, appends its page number to the dirty vector
// (mmu.Mmu.markDirty's contract, inlined here because stores happen far
// more often in compiled code than the interpreter path that mirrors
// this logic). The dirty vector is laid out as one cursor word
// followed by a flat array of page numbers, with regDirtyVec pointing
// at the cursor word, so the JIT never needs to persist an
// incrementing value across calls in a register of its own.
func (c *Compiler) emitMarkDirty(a *asm, addr byte) {
	page := scratchD
	a.movRegReg(page, addr)
	a.shrImm8(page, 12) // PageSize == 4096

	byteIdx := scratchE
	a.movRegReg(byteIdx, page)
	a.shrImm8(byteIdx, 3)

	bitIdx := scratchC // must be rcx: shiftByCL reads the shift count from cl
	a.movRegReg(bitIdx, page)
	a.movImm64(scratchB, 7)
	a.aluRegReg(aluAnd, bitIdx, scratchB, false)

	mask := scratchF
	a.movImm64(mask, 1)
	a.shiftByCL(4, mask, false) // shl mask, cl -- bit pattern for this page

	bitmapByte := scratchG
	a.loadMemIndexedWidth(bitmapByte, regDirtyBitmap, byteIdx, 1, false)

	already := scratchA
	a.movRegReg(already, bitmapByte)
	a.aluRegReg(aluAnd, already, mask, false)
	skipAppend := a.jccRel32(ccNE)

	a.aluRegReg(aluOr, bitmapByte, mask, false)
	a.storeMemIndexed(regDirtyBitmap, byteIdx, bitmapByte, 1)

	cursor := scratchA
	a.loadMem64(cursor, regDirtyVec, 0)
	slot := scratchB
	a.movRegReg(slot, cursor)
	a.shlImm8(slot, 3) // *8: dirty-vector entries are 8 bytes wide
	a.movImm64(scratchD, 8)
	a.aluRegReg(aluAdd, slot, scratchD, false) // past the cursor word itself
	a.storeMemIndexed(regDirtyVec, slot, page, 8)
	a.movImm64(scratchD, 1)
	a.aluRegReg(aluAdd, cursor, scratchD, false)
	a.storeMem(regDirtyVec, 0, cursor, 8)

	patchRel32(a.buf, skipAppend, a.len())
}
