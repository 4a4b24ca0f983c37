package jit

import (
	"fmt"

	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/ir"
	"github.com/seal9055/sfuzz/internal/mmu"
)

// PackFault combines a fault kind and address into the single aux word
// an ExitFault carries, since the exit-info block has no room for a
// fourth field. The emulator unpacks it with UnpackFault.
func PackFault(kind mmu.Kind, addr uint64) uint64 {
	return (addr << 8) | uint64(kind)
}

func UnpackFault(aux uint64) (mmu.Kind, uint64) {
	return mmu.Kind(aux & 0xff), aux >> 8
}

// Compiled is one function's assembled host code plus the host-offset
// of every basic block within it, relative to the start of Code. The
// caller (the dispatcher) appends Code into the shared code cache
// under its lock and publishes Blocks[pc]+thatOffset for every entry.
type Compiled struct {
	Code   []byte
	Blocks map[uint64]int // guest block-entry PC -> offset into Code

	// CoverageSites records the [start,end) byte range of each block's
	// coverage trampoline within Code. The dispatcher self-nulls a site
	// with codecache.Nop(end-start) once RecordIfNew reports the edge
	// is no longer new (spec.md §4.4).
	CoverageSites map[uint64][2]int
}

// Compiler translates lifted ir.Functions into host machine code. It
// holds no guest state; the same Compiler is reused across every
// Compile call from every worker thread (spec.md §5: the JIT itself is
// stateless, only the code cache it writes into is shared).
type Compiler struct {
	Coverage  *coverage.Map
	CallStack bool          // mix a call-stack hash into the edge index, SPEC_FULL.md §4.5
	CmpCov    *coverage.Map // second, dedicated per-byte compare-coverage map, spec.md §3; nil disables CMPCOV
}

// pendingJump is an intra-function jump whose rel32 immediate cannot
// be filled in until every block in the function has been emitted and
// assigned a host offset.
type pendingJump struct {
	immOffset int
	target    uint64
}

// Compile assembles fn's basic blocks into one contiguous host-code
// blob (spec.md §4.2's "one function" compilation unit). Intra-function
// control flow -- branches, jumps and calls whose target is another
// block of this same function -- is resolved as a direct x86 jump with
// a backpatched rel32, since every block's offset is known once the
// whole function has been emitted once into this local buffer.
// Anything else (indirect jumps, returns, syscalls, ebreak, and any
// jump whose target lies outside fn) always exits to the dispatcher.
func (c *Compiler) Compile(fn *ir.Function) (*Compiled, error) {
	blockOffset := make(map[uint64]int, len(fn.Order))
	var pending []pendingJump

	a := &asm{}
	coverageSites := make(map[uint64][2]int, len(fn.Order))
	for _, entry := range fn.Order {
		block := fn.Blocks[entry]
		blockOffset[entry] = a.len()
		siteStart := a.len()
		c.emitCoverageSite(a, entry)
		coverageSites[entry] = [2]int{siteStart, a.len()}
		if a.len() != siteStart {
			// outside the nulled range, so this block stays the "from"
			// half of the next edge after its site becomes NOPs
			a.movImm64(scratchA, entry)
			a.storeMem(regRegFile, reservedFromSlotOff, scratchA, 8)
		}
		emitInstrCheck(a, entry)

		for _, inst := range block.Instructions {
			if err := c.emitInstruction(a, fn, inst, &pending); err != nil {
				return nil, fmt.Errorf("jit: block %#x: %w", entry, err)
			}
		}
	}

	code := a.bytes()
	for _, p := range pending {
		target, ok := blockOffset[p.target]
		if !ok {
			return nil, fmt.Errorf("jit: unresolved intra-function target %#x", p.target)
		}
		patchRel32(code, p.immOffset, target)
	}

	return &Compiled{Code: code, Blocks: blockOffset, CoverageSites: coverageSites}, nil
}

// reservedFromSlotOff is a word reserved just below the register file
// for the thread-local "previous block" half of an edge hash -- the
// "from" side of an edge lives in emulator state, not in any one
// compiled block, since the predecessor can be any block that can
// reach this one (spec.md §4.5).
const reservedFromSlotOff = int32(-8)

// reservedCallStackSlotOff is a second word reserved just below
// reservedFromSlotOff for the optional call-stack hash (spec.md §4.5
// "Call-stack mode": "a host-side hash register updated at each
// call/return and xored into the edge index"). It is folded entirely
// inline by OpCall and a returning OpJumpIndirect, the same way the
// edge hash above never calls back into Go.
const reservedCallStackSlotOff = int32(-16)

// reservedCmpCovBaseOff is a third reserved word, just below
// reservedCallStackSlotOff, holding the compare-coverage map's base
// pointer (spec.md §3's "second map keyed per-byte of multi-byte
// comparisons"). Unlike the other two reserved slots, this one holds a
// constant host pointer rather than per-case state, so the emulator
// refreshes it via RegisterFile.SetCmpCovBase on every enter() instead
// of letting Reset's wholesale buffer copy carry it from the master
// snapshot.
const reservedCmpCovBaseOff = int32(-24)

// callStackReturnTag distinguishes a return's mix from a call's: with
// no inline multiply instruction available, returning folds in this
// odd constant before the avalanche instead of scaling by one.
const callStackReturnTag = uint64(0x5bd1e995)

// emitCoverageSite emits a one-shot trampoline at a block's entry that
// exits to the dispatcher with ExitCoverageNew carrying this edge's
// index in Aux (spec.md §4.4's "rewrite the triggering host site to a
// no-op"). The dispatcher runs RecordIfNew, re-enters at the same
// PC, and -- once the edge is confirmed not new -- overwrites this
// exact byte range with codecache.Nop so later visits pay only for the
// "from" slot update Compile emits right after the site.
func (c *Compiler) emitCoverageSite(a *asm, entry uint64) {
	if c.Coverage == nil || c.Coverage.Mode() == config.CoverageNone {
		return
	}
	if c.Coverage.Mode() == config.CoverageBlock {
		// block mode: the index is the block's own address, masked
		a.movImm64(scratchA, entry&c.Coverage.Mask())
	} else {
		a.loadMem64(scratchA, regRegFile, reservedFromSlotOff)
		inlineXorshift64(a, scratchA)
		a.movImm64(scratchB, entry)
		a.aluRegReg(aluXor, scratchA, scratchB, false)
		if c.CallStack {
			a.loadMem64(scratchB, regRegFile, reservedCallStackSlotOff)
			a.aluRegReg(aluXor, scratchA, scratchB, false)
		}
		a.movImm64(scratchB, c.Coverage.Mask())
		a.aluRegReg(aluAnd, scratchA, scratchB, false)
	}
	a.storeMem(regExitInfo, exitInfoAuxOff, scratchA, 8)

	// record this block as the predecessor for the next edge before
	// exiting, so the dispatcher's re-entry already observes it even
	// though this trampoline never falls through on its own.
	a.movImm64(scratchA, entry)
	a.storeMem(regRegFile, reservedFromSlotOff, scratchA, 8)

	a.movImm64(scratchA, uint64(ExitCoverageNew))
	a.storeMem(regExitInfo, exitInfoCodeOff, scratchA, 8)
	a.movImm64(scratchA, entry)
	a.storeMem(regExitInfo, exitInfoPCOff, scratchA, 8)
	a.ret()
}

// emitInstrCheck emits the always-live instruction-budget counter
// (spec.md §4.5's timeout mechanism): increment the shared counter,
// compare against the budget the emulator set for this case, and exit
// with ExitTimeout once it's reached. Unlike the coverage site above,
// this never self-nulls -- the budget must be enforceable for the
// entire lifetime of a fuzz case, not just until first hit.
func emitInstrCheck(a *asm, entry uint64) {
	a.loadMem64(scratchA, regExitInfo, exitInfoInstrCountOff)
	a.movImm64(scratchB, 1)
	a.aluRegReg(aluAdd, scratchA, scratchB, false)
	a.storeMem(regExitInfo, exitInfoInstrCountOff, scratchA, 8)
	a.loadMem64(scratchB, regExitInfo, exitInfoInstrBudgetOff)
	a.aluRegReg(aluCmp, scratchA, scratchB, false)
	okOffset := a.jccRel32(ccB) // count < budget: continue
	a.emitExit(ExitTimeout, entry, 0)
	patchRel32(a.buf, okOffset, a.len())
}

// inlineXorshift64 emits the xorshift64 mix (coverage.xorshift64, whose
// constants are duplicated here since the JIT cannot call back into Go
// from compiled code) on reg in place.
func inlineXorshift64(a *asm, reg byte) {
	// x ^= x << 13
	a.movRegReg(scratchE, reg)
	a.b(rex(true, false, false, scratchE >= 8), 0xC1, modrm(3, 4, scratchE), 13) // shl scratchE, 13
	a.aluRegReg(aluXor, reg, scratchE, false)
	// x ^= x >> 7
	a.movRegReg(scratchE, reg)
	a.b(rex(true, false, false, scratchE >= 8), 0xC1, modrm(3, 5, scratchE), 7) // shr scratchE, 7
	a.aluRegReg(aluXor, reg, scratchE, false)
	// x ^= x << 17
	a.movRegReg(scratchE, reg)
	a.b(rex(true, false, false, scratchE >= 8), 0xC1, modrm(3, 4, scratchE), 17)
	a.aluRegReg(aluXor, reg, scratchE, false)
}

func binOpcode(op ir.BinOp) (opcode byte, isShift bool, shiftSub byte, w32 bool, ok bool) {
	switch op {
	case ir.BinAdd:
		return aluAdd, false, 0, false, true
	case ir.BinSub:
		return aluSub, false, 0, false, true
	case ir.BinAnd:
		return aluAnd, false, 0, false, true
	case ir.BinOr:
		return aluOr, false, 0, false, true
	case ir.BinXor:
		return aluXor, false, 0, false, true
	case ir.BinSLL:
		return 0, true, 4, false, true
	case ir.BinSRL:
		return 0, true, 5, false, true
	case ir.BinSRA:
		return 0, true, 7, false, true
	case ir.BinAddW:
		return aluAdd, false, 0, true, true
	case ir.BinSubW:
		return aluSub, false, 0, true, true
	case ir.BinSLLW:
		return 0, true, 4, true, true
	case ir.BinSRLW:
		return 0, true, 5, true, true
	case ir.BinSRAW:
		return 0, true, 7, true, true
	case ir.BinSLT, ir.BinSLTU:
		// no ALU opcode: emitInstruction lowers these to cmp + setcc
		return 0, false, 0, false, true
	default:
		return 0, false, 0, false, false
	}
}

// emitInstruction translates one IR instruction. pending collects
// rel32 immediates whose target block hasn't been assigned an offset
// yet; Compile backpatches them once every block has been emitted.
func (c *Compiler) emitInstruction(a *asm, fn *ir.Function, inst ir.Instruction, pending *[]pendingJump) error {
	switch inst.Op {
	case ir.OpLabel:
		return nil

	case ir.OpMoveImm:
		if inst.Dst.IsZero() {
			return nil
		}
		a.movImm64(scratchA, uint64(inst.Imm))
		a.storeMem(regRegFile, regFileOffset(inst.Dst), scratchA, 8)

	case ir.OpMoveReg:
		if inst.Dst.IsZero() {
			return nil
		}
		a.loadMem64(scratchA, regRegFile, regFileOffset(inst.Src1))
		a.storeMem(regRegFile, regFileOffset(inst.Dst), scratchA, 8)

	case ir.OpALU:
		if inst.Dst.IsZero() {
			return nil
		}
		a.loadMem64(scratchA, regRegFile, regFileOffset(inst.Src1))
		if inst.UseImm {
			a.movImm64(scratchB, uint64(inst.Imm))
		} else {
			a.loadMem64(scratchB, regRegFile, regFileOffset(inst.Src2))
		}
		opcode, isShift, shiftSub, w32, ok := binOpcode(inst.BinOp)
		if !ok {
			return fmt.Errorf("unsupported binop %v", inst.BinOp)
		}
		switch {
		case inst.BinOp == ir.BinSLT:
			a.aluRegReg(aluCmp, scratchA, scratchB, false)
			a.setccAndZeroExtend(ccL, scratchA)
		case inst.BinOp == ir.BinSLTU:
			a.aluRegReg(aluCmp, scratchA, scratchB, false)
			a.setccAndZeroExtend(ccB, scratchA)
		case isShift:
			a.movRegReg(scratchC, scratchB)
			a.shiftByCL(shiftSub, scratchA, w32)
		default:
			a.aluRegReg(opcode, scratchA, scratchB, w32)
		}
		if w32 {
			// sign-extend the 32-bit result into the full 64-bit slot.
			a.b(rex(true, scratchA >= 8, false, scratchA >= 8), 0x63, modrm(3, scratchA, scratchA))
		}
		a.storeMem(regRegFile, regFileOffset(inst.Dst), scratchA, 8)

	case ir.OpLoad:
		c.emitLoad(a, inst)

	case ir.OpStore:
		c.emitStore(a, inst)

	case ir.OpBranch:
		a.loadMem64(scratchA, regRegFile, regFileOffset(inst.Src1))
		a.loadMem64(scratchB, regRegFile, regFileOffset(inst.Src2))
		if c.CmpCov != nil && (inst.Cond == ir.CondEQ || inst.Cond == ir.CondNE) {
			c.emitCmpCovBranch(a, scratchA, scratchB, inst.PC)
		}
		a.aluRegReg(aluCmp, scratchA, scratchB, false)
		cc, ok := branchCC(inst.Cond)
		if !ok {
			return fmt.Errorf("unsupported branch condition %v", inst.Cond)
		}
		c.emitControlTransfer(a, fn, cc, inst.TargetTrue, pending)
		c.emitControlTransfer(a, fn, 0xFF, inst.TargetFalse, pending) // 0xFF = unconditional

	case ir.OpJump:
		c.emitControlTransfer(a, fn, 0xFF, inst.TargetTrue, pending)

	case ir.OpCall:
		if c.CallStack {
			// fold the callee's entry address into the call-stack hash
			// slot, inlined the same way the coverage edge hash is
			// inlined above. inst.PC is unreliable here -- the lifter
			// only tags the first IR instruction of a lowering, which
			// for a call with rd != 0 is the return-address OpMoveImm,
			// not this OpCall -- so the call target (always known,
			// always present) is used as the mix input instead.
			a.loadMem64(scratchA, regRegFile, reservedCallStackSlotOff)
			a.movImm64(scratchB, inst.TargetTrue)
			a.aluRegReg(aluXor, scratchA, scratchB, false)
			inlineXorshift64(a, scratchA)
			a.storeMem(regRegFile, reservedCallStackSlotOff, scratchA, 8)
		}
		c.emitControlTransfer(a, fn, 0xFF, inst.TargetTrue, pending)

	case ir.OpJumpIndirect, ir.OpReturn:
		// target = reg(Src1) + Imm, only known at run time; always exits
		// to the dispatcher, which performs the table lookup.
		a.loadMem64(scratchA, regRegFile, regFileOffset(inst.Src1))
		a.movImm64(scratchB, uint64(inst.Imm))
		a.aluRegReg(aluAdd, scratchA, scratchB, false)
		if c.CallStack && (inst.IsReturn || inst.Op == ir.OpReturn) {
			// fold the resolved return target into the call-stack hash
			// slot too, using scratchC/D so scratchA -- still needed
			// below as the exit target -- is left untouched.
			a.loadMem64(scratchC, regRegFile, reservedCallStackSlotOff)
			a.aluRegReg(aluXor, scratchC, scratchA, false)
			a.movImm64(scratchD, callStackReturnTag)
			a.aluRegReg(aluXor, scratchC, scratchD, false)
			inlineXorshift64(a, scratchC)
			a.storeMem(regRegFile, reservedCallStackSlotOff, scratchC, 8)
		}
		a.emitExitFromReg(scratchA, ExitNeedCompile, 0)

	case ir.OpSyscall:
		a.emitExit(ExitSyscall, inst.PC, 0)

	case ir.OpDebug:
		a.emitExit(ExitDebug, inst.PC, 0)

	default:
		return fmt.Errorf("unsupported IR op %v", inst.Op)
	}
	return nil
}

// emitControlTransfer emits either an intra-function jump (recorded in
// pending for backpatching) or a dispatcher exit, depending on whether
// target lies within fn. cc == 0xFF means unconditional.
func (c *Compiler) emitControlTransfer(a *asm, fn *ir.Function, cc byte, target uint64, pending *[]pendingJump) {
	if _, inFunction := fn.Blocks[target]; inFunction {
		var immOff int
		if cc == 0xFF {
			immOff = a.jmpRel32()
		} else {
			immOff = a.jccRel32(cc)
		}
		*pending = append(*pending, pendingJump{immOff, target})
		return
	}
	if cc != 0xFF {
		// conditional exit: skip the exit sequence when the branch is
		// not taken by jumping over it, then fall through.
		notTakenOff := a.jccRel32(invertCC(cc))
		a.emitExit(ExitNeedCompile, target, 0)
		patchRel32(a.buf, notTakenOff, a.len())
		return
	}
	a.emitExit(ExitNeedCompile, target, 0)
}

func invertCC(cc byte) byte {
	switch cc {
	case ccL:
		return ccGE
	case ccGE:
		return ccL
	case ccB:
		return ccAE
	case ccAE:
		return ccB
	case ccE:
		return ccNE
	case ccNE:
		return ccE
	default:
		return cc
	}
}

// emitCmpCovBranch decomposes a full-width beq/bne comparison into a
// chain of per-byte matches feeding the dedicated compare-coverage map
// (spec.md §3: "a second map keyed per-byte of multi-byte comparisons";
// §4.5's CMPCOV: "decompose wide comparisons into one coverage slot per
// matching byte prefix"). It stops at the first mismatching byte, so the
// recorded slots trace how many leading bytes of this comparison the
// current input already gets right -- the incremental signal a
// magic-value check needs to be found byte by byte instead of only on
// an exact full-width match. lhs/rhs are read only; the real aluCmp the
// branch needs still runs afterward on the caller's own copies.
func (c *Compiler) emitCmpCovBranch(a *asm, lhs, rhs byte, pc uint64) {
	base := scratchG
	a.loadMem64(base, regRegFile, reservedCmpCovBaseOff)

	var mismatchOffs []int
	for i := 0; i < 8; i++ {
		byteA := scratchC
		a.movRegReg(byteA, lhs)
		a.shrImm8(byteA, byte(i*8))
		a.movImm64(scratchE, 0xff)
		a.aluRegReg(aluAnd, byteA, scratchE, false)

		byteB := scratchD
		a.movRegReg(byteB, rhs)
		a.shrImm8(byteB, byte(i*8))
		a.movImm64(scratchE, 0xff)
		a.aluRegReg(aluAnd, byteB, scratchE, false)

		a.aluRegReg(aluCmp, byteA, byteB, false)
		mismatchOffs = append(mismatchOffs, a.jccRel32(ccNE))

		idx := scratchF
		a.movImm64(idx, pc+uint64(i))
		inlineXorshift64(a, idx)
		a.movImm64(scratchE, c.CmpCov.Mask())
		a.aluRegReg(aluAnd, idx, scratchE, false)

		slot := scratchC
		a.loadMemIndexedWidth(slot, base, idx, 1, false)
		a.movImm64(scratchD, 1)
		a.aluRegReg(aluOr, slot, scratchD, false)
		a.storeMemIndexed(base, idx, slot, 1)
	}

	end := a.len()
	for _, off := range mismatchOffs {
		patchRel32(a.buf, off, end)
	}
}

func branchCC(cond ir.Cond) (byte, bool) {
	switch cond {
	case ir.CondEQ:
		return ccE, true
	case ir.CondNE:
		return ccNE, true
	case ir.CondLT:
		return ccL, true
	case ir.CondGE:
		return ccGE, true
	case ir.CondLTU:
		return ccB, true
	case ir.CondGEU:
		return ccAE, true
	default:
		return 0, false
	}
}
