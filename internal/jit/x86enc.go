// Package jit is the single-pass x86-64 backend described in spec.md
// §4 and SPEC_FULL.md §4.3: it consumes one lifted ir.Function at a
// time and emits raw host machine code bytes directly, the same way
// the teacher's pvm/recompiler package hand-emits x86 bytes in
// vm_execute.go's Generate* helpers rather than going through an
// assembler. There is deliberately no register allocator and no
// instruction scheduler (spec.md's "Non-goals": "no attempt ... to
// build an optimizing JIT").
package jit

import "encoding/binary"

// amd64 general-purpose register encodings (ModRM.rm / REX.B numbering).
const (
	rax byte = 0
	rcx byte = 1
	rdx byte = 2
	rbx byte = 3
	rsp byte = 4
	rbp byte = 5
	rsi byte = 6
	rdi byte = 7
	r8  byte = 8
	r9  byte = 9
	r10 byte = 10
	r11 byte = 11
	r12 byte = 12
	r13 byte = 13
	r14 byte = 14
	r15 byte = 15
)

// rex builds a REX prefix byte. w selects 64-bit operand size, r/x/b are
// the high bits of ModRM.reg, SIB.index and ModRM.rm/SIB.base.
func rex(w, r, x, b bool) byte {
	v := byte(0x40)
	if w {
		v |= 1 << 3
	}
	if r {
		v |= 1 << 2
	}
	if x {
		v |= 1 << 1
	}
	if b {
		v |= 1
	}
	return v
}

func modrm(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | (rm & 7)
}

// needsSIB reports whether encoding reg as ModRM.rm would collide with
// the SIB escape (RSP/R12 both have low 3 bits 100).
func needsSIB(reg byte) bool { return reg&7 == rsp }

func le32(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// asm accumulates emitted bytes for one IR instruction's translation.
// The teacher's Generate* helpers each return a fixed []byte; sfuzz's
// translations are variable-length (width- and sign-dependent), so
// asm plays the same role as a growable buffer instead.
type asm struct {
	buf []byte
}

func (a *asm) b(bs ...byte)   { a.buf = append(a.buf, bs...) }
func (a *asm) raw(bs []byte)  { a.buf = append(a.buf, bs...) }
func (a *asm) bytes() []byte  { return a.buf }
func (a *asm) len() int       { return len(a.buf) }

// movImm64 emits `movabs dst, imm` (REX.W B8+r, imm64).
func (a *asm) movImm64(dst byte, imm uint64) {
	a.b(rex(true, false, false, dst >= 8), 0xB8+(dst&7))
	a.raw(le64(imm))
}

// movRegReg emits `mov dst, src` (REX.W 89 /r), 64-bit register move.
func (a *asm) movRegReg(dst, src byte) {
	a.b(rex(true, src >= 8, false, dst >= 8), 0x89, modrm(3, src, dst))
}

// memOperand appends the ModRM/SIB/disp32 bytes addressing [base+disp32]
// with regField as ModRM.reg, handling the SIB-escape case for RSP/R12
// bases (R12 is the reserved permission-byte base pointer, so this path
// is exercised on every permission check).
func (a *asm) memOperand(regField, base byte, disp int32) {
	if needsSIB(base) {
		a.b(modrm(2, regField, rsp), 0x24) // SIB: scale=0,index=none,base=rsp/r12
	} else {
		a.b(modrm(2, regField, base))
	}
	a.raw(le32(disp))
}

// loadMem64 emits `mov dst, [base+disp32]` (REX.W 8B /r).
func (a *asm) loadMem64(dst, base byte, disp int32) {
	a.b(rex(true, dst >= 8, false, base >= 8), 0x8B)
	a.memOperand(dst, base, disp)
}

// storeMem emits `mov [base+disp32], src` at the given width (1/2/4/8).
func (a *asm) storeMem(base byte, disp int32, src byte, width int) {
	switch width {
	case 1:
		a.b(rex(false, src >= 8, false, base >= 8), 0x88)
	case 2:
		a.b(0x66, rex(false, src >= 8, false, base >= 8), 0x89)
	case 4:
		if src >= 8 || base >= 8 {
			a.b(rex(false, src >= 8, false, base >= 8), 0x89)
		} else {
			a.b(0x89)
		}
	default:
		a.b(rex(true, src >= 8, false, base >= 8), 0x89)
	}
	a.memOperand(src, base, disp)
}

// loadMemWidth emits a load of width bytes from [base+disp32] into dst,
// zero- or sign-extended to 64 bits.
func (a *asm) loadMemWidth(dst, base byte, disp int32, width int, signExtend bool) {
	switch width {
	case 1:
		if signExtend {
			a.b(rex(true, dst >= 8, false, base >= 8), 0x0F, 0xBE)
		} else {
			a.b(rex(true, dst >= 8, false, base >= 8), 0x0F, 0xB6)
		}
	case 2:
		if signExtend {
			a.b(rex(true, dst >= 8, false, base >= 8), 0x0F, 0xBF)
		} else {
			a.b(rex(true, dst >= 8, false, base >= 8), 0x0F, 0xB7)
		}
	case 4:
		if signExtend {
			a.b(rex(true, dst >= 8, false, base >= 8), 0x63) // movsxd
		} else {
			// mov r32, [mem] zero-extends the upper 32 bits for free.
			if dst >= 8 || base >= 8 {
				a.b(rex(false, dst >= 8, false, base >= 8), 0x8B)
			} else {
				a.b(0x8B)
			}
		}
	default:
		a.loadMem64(dst, base, disp)
		return
	}
	a.memOperand(dst, base, disp)
}

// lea emits `lea dst, [base+disp32]`.
func (a *asm) lea(dst, base byte, disp int32) {
	a.b(rex(true, dst >= 8, false, base >= 8), 0x8D)
	a.memOperand(dst, base, disp)
}

const (
	aluAdd = 0x01
	aluSub = 0x29
	aluAnd = 0x21
	aluOr  = 0x09
	aluXor = 0x31
	aluCmp = 0x39
)

// aluRegReg emits `op dst, src` for the register/register ALU opcodes
// above, operating on the full 64-bit register unless w32 is set (used
// for the RV64 *W variants, which must not touch the upper 32 bits
// until the final sign-extending store).
func (a *asm) aluRegReg(op byte, dst, src byte, w32 bool) {
	if w32 {
		if dst >= 8 || src >= 8 {
			a.b(rex(false, src >= 8, false, dst >= 8), op)
		} else {
			a.b(op)
		}
	} else {
		a.b(rex(true, src >= 8, false, dst >= 8), op)
	}
	a.b(modrm(3, src, dst))
}

// shiftByCL emits `op dst, cl` where op selects shl(4)/shr(5)/sar(7)
// (REX.W D3 /op). The shift amount must already be in CL.
func (a *asm) shiftByCL(sub byte, dst byte, w32 bool) {
	if w32 {
		if dst >= 8 {
			a.b(rex(false, false, false, true), 0xD3)
		} else {
			a.b(0xD3)
		}
	} else {
		a.b(rex(true, false, false, dst >= 8), 0xD3)
	}
	a.b(modrm(3, sub, dst))
}

// setccAndZeroExtend emits `setCC dst8; movzx dst, dst8` -- the idiom
// used for SLT/SLTU, which RV64I defines as a 0/1 integer result.
func (a *asm) setccAndZeroExtend(cc byte, dst byte) {
	// setCC r/m8: 0F 9x /0. Only addressable without REX on al/cl/dl/bl,
	// so always emit a REX prefix (even the no-op 0x40) to reach r8-r15
	// and to access the low byte of rsi/rdi/rbp/rsp uniformly.
	a.b(rex(false, false, false, dst >= 8), 0x0F, 0x90+cc, modrm(3, 0, dst))
	// movzx dst, dst (8-bit source, REX.W so upper 56 bits clear).
	a.b(rex(true, dst >= 8, false, dst >= 8), 0x0F, 0xB6, modrm(3, dst, dst))
}

const (
	ccL  = 0xC // jl/setl
	ccB  = 0x2 // jb/setb (unsigned <)
	ccGE = 0xD
	ccAE = 0x3
	ccE  = 0x4
	ccNE = 0x5
)

// jccRel32 emits a near conditional jump with a placeholder rel32,
// returning the buffer offset of the 4-byte immediate so the caller
// can backpatch it once the target's offset is known.
func (a *asm) jccRel32(cc byte) (immOffset int) {
	a.b(0x0F, 0x80+cc)
	immOffset = a.len()
	a.raw(le32(0))
	return immOffset
}

// jmpRel32 emits an unconditional near jump with a placeholder rel32.
func (a *asm) jmpRel32() (immOffset int) {
	a.b(0xE9)
	immOffset = a.len()
	a.raw(le32(0))
	return immOffset
}

// patchRel32 fills in a rel32 immediate previously reserved by
// jccRel32/jmpRel32 once the jump's target offset (relative to the
// start of this same buffer) is known.
func patchRel32(buf []byte, immOffset, targetOffset int) {
	rel := int32(targetOffset - (immOffset + 4))
	copy(buf[immOffset:immOffset+4], le32(rel))
}

// memIndexed appends the ModRM/SIB bytes addressing [base+index] (no
// scale, disp8=0) with regField as ModRM.reg. mod=01 with an explicit
// disp8 byte is used uniformly rather than mod=00, which sidesteps two
// x86 encoding quirks at once: SIB is mandatory whenever ModRM.rm would
// read 100 (the RSP/R12 case, already true here since SIB is always
// emitted), and mod=00 with SIB.base=101 means "no base, disp32" (the
// RBP/R13 case) instead of an actual base-register read -- both of
// sfuzz's address registers, the permission base (R12) and the memory
// base (R13), would hit one of these if mod=00 were used.
func (a *asm) memIndexed(regField, base, index byte) {
	a.b(modrm(1, regField, rsp), (index&7)<<3|(base&7), 0)
}

// loadMemIndexedWidth loads width bytes from [base+index] into dst.
func (a *asm) loadMemIndexedWidth(dst, base, index byte, width int, signExtend bool) {
	switch width {
	case 1:
		if signExtend {
			a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x0F, 0xBE)
		} else {
			a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x0F, 0xB6)
		}
	case 2:
		if signExtend {
			a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x0F, 0xBF)
		} else {
			a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x0F, 0xB7)
		}
	case 4:
		if signExtend {
			a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x63)
		} else {
			a.b(rex(false, dst >= 8, index >= 8, base >= 8), 0x8B)
		}
	default:
		a.b(rex(true, dst >= 8, index >= 8, base >= 8), 0x8B)
	}
	a.memIndexed(dst, base, index)
}

// storeMemIndexed stores width bytes of src into [base+index].
func (a *asm) storeMemIndexed(base, index, src byte, width int) {
	switch width {
	case 1:
		a.b(rex(false, src >= 8, index >= 8, base >= 8), 0x88)
	case 2:
		a.b(0x66, rex(false, src >= 8, index >= 8, base >= 8), 0x89)
	case 4:
		a.b(rex(false, src >= 8, index >= 8, base >= 8), 0x89)
	default:
		a.b(rex(true, src >= 8, index >= 8, base >= 8), 0x89)
	}
	a.memIndexed(src, base, index)
}

func (a *asm) ret() { a.b(0xC3) }

func (a *asm) pushReg(r byte) {
	if r >= 8 {
		a.b(0x41)
	}
	a.b(0x50 + (r & 7))
}

func (a *asm) nop() { a.b(0x90) }
