// Package lifter turns a range of RV64I guest code into the flat IR
// package ir describes (spec.md §4.2). It is the only package that
// needs to change to port sfuzz to a different guest architecture: the
// JIT backend and everything downstream of it only ever sees ir.
package lifter

import (
	"fmt"
	"sort"

	"github.com/seal9055/sfuzz/internal/ir"
	"github.com/seal9055/sfuzz/internal/riscv"
)

// CodeFetcher is the minimal read surface the lifter needs from guest
// memory; *mmu.Mmu satisfies it.
type CodeFetcher interface {
	FetchInstruction(addr uint64) (uint32, error)
}

// Lift decodes [entry, entry+size) into an ir.Function, splitting basic
// blocks at branch targets and at every control-flow-ending instruction
// (spec.md §3: "blocks delimited by branch targets and branch/return/
// syscall instructions"). Only a fetch or decode failure at entry is an
// error; one further in ends the range there, and the block before it
// falls through to that PC, which fails only if execution reaches it.
func Lift(mem CodeFetcher, entry, size uint64) (*ir.Function, error) {
	end := entry + size

	decoded := make(map[uint64]riscv.Instruction)
	leaders := map[uint64]bool{entry: true}

	for pc := entry; pc < end; pc += 4 {
		raw, err := mem.FetchInstruction(pc)
		if err != nil {
			if pc == entry {
				return nil, fmt.Errorf("lifter: fetch at 0x%x: %w", pc, err)
			}
			end = pc
			break
		}
		inst, err := riscv.Decode(raw, pc)
		if err != nil {
			if pc == entry {
				return nil, err
			}
			end = pc
			break
		}
		decoded[pc] = inst

		if inst.IsControlFlow() {
			// the instruction right after a branch/jump/syscall starts a new block
			if pc+4 < end {
				leaders[pc+4] = true
			}
			if inst.IsBranch {
				target := uint64(int64(pc) + inst.Imm)
				if target >= entry && target < end {
					leaders[target] = true
				}
			} else if inst.Op == riscv.OpJAL {
				target := uint64(int64(pc) + inst.Imm)
				if target >= entry && target < end {
					leaders[target] = true
				}
			}
		}
	}

	var order []uint64
	for pc := range leaders {
		order = append(order, pc)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	fn := ir.NewFunction(entry, size)

	for idx, blockStart := range order {
		blockEnd := end
		if idx+1 < len(order) {
			blockEnd = order[idx+1]
		}
		block := &ir.Block{Entry: blockStart}

		var lastInst riscv.Instruction
		havePC := false
		for pc := blockStart; pc < blockEnd; pc += 4 {
			inst, ok := decoded[pc]
			if !ok {
				break
			}
			lastInst = inst
			havePC = true
			block.Instructions = append(block.Instructions, lowerInstruction(inst)...)
			if inst.IsControlFlow() {
				break
			}
		}

		if !havePC {
			continue
		}

		if !lastInst.IsControlFlow() {
			// fell off the end of the block's guest range without hitting
			// an explicit control-flow instruction: the next block entry in
			// program order is the only well-defined fallthrough target.
			nextPC := lastInst.PC + 4
			block.Instructions = append(block.Instructions, ir.Instruction{
				Op:          ir.OpJump,
				TargetTrue:  nextPC,
				TargetFalse: nextPC,
			})
		}

		fn.AddBlock(block)
	}

	return fn, nil
}

// lowerInstruction expands one RV64I instruction into one or more IR
// instructions. Only the first carries the guest PC (spec.md §3).
// Writes to x0 are folded away, per spec.md §4.2.
func lowerInstruction(inst riscv.Instruction) []ir.Instruction {
	pc := inst.PC
	tag := func(i ir.Instruction) ir.Instruction {
		i.PC = pc
		pc = 0 // only the first instruction emitted keeps the PC
		return i
	}

	rd := ir.X(inst.Rd)
	rs1 := ir.X(inst.Rs1)
	rs2 := ir.X(inst.Rs2)

	discard := inst.Rd == 0 // fold away writes to x0

	switch inst.Op {
	case riscv.OpLUI:
		if discard {
			break
		}
		return []ir.Instruction{tag(ir.Instruction{Op: ir.OpMoveImm, Dst: rd, Imm: inst.Imm})}

	case riscv.OpAUIPC:
		if discard {
			break
		}
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpALU, Dst: rd, Src1: ir.X(0), BinOp: ir.BinAdd, UseImm: true,
			Imm: int64(pc) + inst.Imm,
		})}

	case riscv.OpJAL:
		var out []ir.Instruction
		if !discard {
			out = append(out, tag(ir.Instruction{Op: ir.OpMoveImm, Dst: rd, Imm: int64(inst.PC + 4)}))
		}
		target := uint64(int64(inst.PC) + inst.Imm)
		op := ir.OpJump
		if inst.IsCall {
			op = ir.OpCall
		}
		j := ir.Instruction{Op: op, TargetTrue: target, TargetFalse: target}
		if len(out) == 0 {
			j = tag(j)
		}
		out = append(out, j)
		return out

	case riscv.OpJALR:
		var out []ir.Instruction
		// target = rs1 + imm, computed into a scratch slot disjoint from
		// the guest register file before rd is clobbered -- rd may equal
		// rs1, and for the universal `jalr ra, off(rs1)` call form rd is
		// ra (x1), so the target must not alias any real register.
		out = append(out, tag(ir.Instruction{
			Op: ir.OpALU, Dst: ir.Scratch(0), Src1: rs1, BinOp: ir.BinAdd, UseImm: true, Imm: inst.Imm,
		}))
		if !discard {
			out = append(out, ir.Instruction{Op: ir.OpMoveImm, Dst: rd, Imm: int64(inst.PC + 4)})
		}
		out = append(out, ir.Instruction{
			Op: ir.OpJumpIndirect, Src1: ir.Scratch(0), IsReturn: inst.IsReturn,
		})
		return out

	case riscv.OpBEQ, riscv.OpBNE, riscv.OpBLT, riscv.OpBGE, riscv.OpBLTU, riscv.OpBGEU:
		cond := map[riscv.Op]ir.Cond{
			riscv.OpBEQ: ir.CondEQ, riscv.OpBNE: ir.CondNE, riscv.OpBLT: ir.CondLT,
			riscv.OpBGE: ir.CondGE, riscv.OpBLTU: ir.CondLTU, riscv.OpBGEU: ir.CondGEU,
		}[inst.Op]
		target := uint64(int64(inst.PC) + inst.Imm)
		fallthroughPC := inst.PC + 4
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpBranch, Src1: rs1, Src2: rs2, Cond: cond,
			TargetTrue: target, TargetFalse: fallthroughPC,
		})}

	case riscv.OpLB, riscv.OpLH, riscv.OpLW, riscv.OpLD, riscv.OpLBU, riscv.OpLHU, riscv.OpLWU:
		if discard {
			break
		}
		width, signExtend := loadShape(inst.Op)
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpLoad, Dst: rd, Src1: rs1, Imm: inst.Imm, Width: width, SignExtend: signExtend,
		})}

	case riscv.OpSB, riscv.OpSH, riscv.OpSW, riscv.OpSD:
		width := map[riscv.Op]ir.Width{
			riscv.OpSB: ir.Width1, riscv.OpSH: ir.Width2, riscv.OpSW: ir.Width4, riscv.OpSD: ir.Width8,
		}[inst.Op]
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpStore, Src1: rs1, Src2: rs2, Imm: inst.Imm, Width: width,
		})}

	case riscv.OpADDI, riscv.OpSLTI, riscv.OpSLTIU, riscv.OpXORI, riscv.OpORI, riscv.OpANDI,
		riscv.OpSLLI, riscv.OpSRLI, riscv.OpSRAI, riscv.OpADDIW, riscv.OpSLLIW, riscv.OpSRLIW, riscv.OpSRAIW:
		if discard {
			break
		}
		binop := immBinOp(inst.Op)
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpALU, Dst: rd, Src1: rs1, BinOp: binop, UseImm: true, Imm: inst.Imm,
		})}

	case riscv.OpADD, riscv.OpSUB, riscv.OpSLL, riscv.OpSLT, riscv.OpSLTU, riscv.OpXOR, riscv.OpSRL,
		riscv.OpSRA, riscv.OpOR, riscv.OpAND, riscv.OpADDW, riscv.OpSUBW, riscv.OpSLLW, riscv.OpSRLW, riscv.OpSRAW:
		if discard {
			break
		}
		binop := regBinOp(inst.Op)
		return []ir.Instruction{tag(ir.Instruction{
			Op: ir.OpALU, Dst: rd, Src1: rs1, Src2: rs2, BinOp: binop,
		})}

	case riscv.OpFENCE:
		return []ir.Instruction{tag(ir.Instruction{Op: ir.OpDebug})}

	case riscv.OpECALL:
		return []ir.Instruction{tag(ir.Instruction{Op: ir.OpSyscall})}

	case riscv.OpEBREAK:
		return []ir.Instruction{tag(ir.Instruction{Op: ir.OpDebug})}
	}

	// discarded write to x0: still consumes the guest PC slot for
	// coverage bookkeeping, represented as a no-op debug marker.
	return []ir.Instruction{tag(ir.Instruction{Op: ir.OpDebug})}
}

func loadShape(op riscv.Op) (ir.Width, bool) {
	switch op {
	case riscv.OpLB:
		return ir.Width1, true
	case riscv.OpLH:
		return ir.Width2, true
	case riscv.OpLW:
		return ir.Width4, true
	case riscv.OpLD:
		return ir.Width8, true
	case riscv.OpLBU:
		return ir.Width1, false
	case riscv.OpLHU:
		return ir.Width2, false
	case riscv.OpLWU:
		return ir.Width4, false
	}
	return ir.Width8, false
}

func immBinOp(op riscv.Op) ir.BinOp {
	switch op {
	case riscv.OpADDI, riscv.OpADDIW:
		if op == riscv.OpADDIW {
			return ir.BinAddW
		}
		return ir.BinAdd
	case riscv.OpSLTI:
		return ir.BinSLT
	case riscv.OpSLTIU:
		return ir.BinSLTU
	case riscv.OpXORI:
		return ir.BinXor
	case riscv.OpORI:
		return ir.BinOr
	case riscv.OpANDI:
		return ir.BinAnd
	case riscv.OpSLLI:
		return ir.BinSLL
	case riscv.OpSRLI:
		return ir.BinSRL
	case riscv.OpSRAI:
		return ir.BinSRA
	case riscv.OpSLLIW:
		return ir.BinSLLW
	case riscv.OpSRLIW:
		return ir.BinSRLW
	case riscv.OpSRAIW:
		return ir.BinSRAW
	}
	return ir.BinAdd
}

func regBinOp(op riscv.Op) ir.BinOp {
	switch op {
	case riscv.OpADD:
		return ir.BinAdd
	case riscv.OpSUB:
		return ir.BinSub
	case riscv.OpSLL:
		return ir.BinSLL
	case riscv.OpSLT:
		return ir.BinSLT
	case riscv.OpSLTU:
		return ir.BinSLTU
	case riscv.OpXOR:
		return ir.BinXor
	case riscv.OpSRL:
		return ir.BinSRL
	case riscv.OpSRA:
		return ir.BinSRA
	case riscv.OpOR:
		return ir.BinOr
	case riscv.OpAND:
		return ir.BinAnd
	case riscv.OpADDW:
		return ir.BinAddW
	case riscv.OpSUBW:
		return ir.BinSubW
	case riscv.OpSLLW:
		return ir.BinSLLW
	case riscv.OpSRLW:
		return ir.BinSRLW
	case riscv.OpSRAW:
		return ir.BinSRAW
	}
	return ir.BinAdd
}
