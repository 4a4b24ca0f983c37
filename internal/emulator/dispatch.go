package emulator

import (
	"unsafe"

	"github.com/seal9055/sfuzz/internal/codecache"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/jit"
	"github.com/seal9055/sfuzz/internal/mmu"
)

// RunCase drives one fuzz case end to end, spec.md §4.7's run_case
// contract: reset from the master snapshot, stage the input, enter the
// code cache, and loop on the dispatcher until the case ends.
//
// RunCase never records into Program.Crashes itself -- crash dedup and
// file write-out are the caller's job (internal/orchestrator's worker
// loop), mirroring original_source/lib.rs's split between run_jit
// (returns a Fault) and worker (checks corpus.crash_mapping).
func (e *Emulator) RunCase(input []byte) (Outcome, error) {
	e.reset()
	if err := e.stageInput(input); err != nil {
		return Outcome{}, err
	}

	budget := e.prog.InstrBudget
	if budget == 0 {
		budget = ^uint64(0)
	}
	e.exitInfo.InstrBudget = budget

	return e.run()
}

// run is spec.md §4.4's dispatcher loop: look the current guest PC up
// in the translation table, enter the JIT, and branch on the exit code
// it leaves behind, until the case ends in OK, a crash, or a timeout.
func (e *Emulator) run() (Outcome, error) {
	pc := e.Regs.PC()
	newEdges := 0

	for {
		if e.prog.ExitPC != 0 && pc == e.prog.ExitPC {
			e.Regs.SetPC(pc)
			return Outcome{Kind: OutcomeOK, NewEdges: newEdges, Instrs: e.exitInfo.InstrCount}, nil
		}

		if h, ok := e.prog.Hooks.lookup(pc); ok {
			reentry, fault := h(e)
			if fault != nil {
				crash := coverage.Crash{Kind: mapFaultKind(fault.Kind), PC: pc, Addr: fault.Addr}
				return e.crashOutcome(crash, newEdges), nil
			}
			pc = reentry
			continue
		}

		offset, ok := e.prog.Cache.Lookup(pc)
		if !ok {
			var crash *coverage.Crash
			var fatal error
			offset, crash, fatal = e.compile(pc)
			if fatal != nil {
				return Outcome{}, fatal
			}
			if crash != nil {
				return e.crashOutcome(*crash, newEdges), nil
			}
		}

		e.enter(offset)

		switch e.exitInfo.Code {
		case jit.ExitNeedCompile:
			pc = e.exitInfo.PC

		case jit.ExitSyscall:
			num := e.Regs.Get(regA7)
			var args [6]uint64
			for i := range args {
				args[i] = e.Regs.Get(uint32(regA0 + i))
			}
			handler, ok := e.prog.Syscalls.handlers[num]
			if !ok {
				e.Regs.Set(regA0, ^uint64(0)) // ENOSYS-shaped: negative return, not a crash
				pc = e.exitInfo.PC + 4
				continue
			}
			result, exited := handler(e, args)
			if exited {
				return Outcome{Kind: OutcomeOK, NewEdges: newEdges, Instrs: e.exitInfo.InstrCount}, nil
			}
			e.Regs.Set(regA0, uint64(result))
			pc = e.exitInfo.PC + 4

		case jit.ExitHook:
			// not emitted by the current JIT (hooks are resolved at the
			// NEED_COMPILE boundary above); kept so the exit taxonomy
			// matches spec.md §4.4 in full and so a future inline-hook
			// fast path has somewhere to land.
			if h, ok := e.prog.Hooks.lookup(e.exitInfo.PC); ok {
				reentry, fault := h(e)
				if fault != nil {
					crash := coverage.Crash{Kind: mapFaultKind(fault.Kind), PC: e.exitInfo.PC, Addr: fault.Addr}
					return e.crashOutcome(crash, newEdges), nil
				}
				pc = reentry
				continue
			}
			pc = e.exitInfo.PC

		case jit.ExitCoverageNew:
			if e.prog.Coverage.RecordIfNew(e.exitInfo.Aux) {
				newEdges++
			}
			e.selfNull(e.exitInfo.PC)
			pc = e.exitInfo.PC

		case jit.ExitFault:
			kind, addr := jit.UnpackFault(e.exitInfo.Aux)
			crash := coverage.Crash{Kind: mapFaultKind(kind), PC: e.exitInfo.PC, Addr: addr}
			return e.crashOutcome(crash, newEdges), nil

		case jit.ExitTimeout:
			return Outcome{Kind: OutcomeTimeout, NewEdges: newEdges, Instrs: e.exitInfo.InstrCount}, nil

		case jit.ExitDebug:
			pc = e.exitInfo.PC + 4

		default:
			return Outcome{}, nil
		}
	}
}

func (e *Emulator) crashOutcome(c coverage.Crash, newEdges int) Outcome {
	return Outcome{Kind: OutcomeCrash, Crash: c, NewEdges: newEdges, Instrs: e.exitInfo.InstrCount}
}

func mapFaultKind(k mmu.Kind) coverage.CrashKind {
	switch k {
	case mmu.KindRead:
		return coverage.CrashRead
	case mmu.KindWrite:
		return coverage.CrashWrite
	case mmu.KindExec:
		return coverage.CrashExec
	case mmu.KindInvalidFree:
		return coverage.CrashInvalidFree
	default:
		return coverage.CrashOOB
	}
}

// selfNull overwrites a coverage trampoline with NOPs once its edge is
// confirmed not new (spec.md §4.4 "rewrite the triggering host site to
// a no-op; reenter"). Missing entries (a race where another thread's
// compile hasn't published coverageSites yet, or a block the current
// coverage mode never instrumented) are silently skipped -- the site
// just keeps costing its one load-and-compare, which is correct, only
// not maximally cheap.
func (e *Emulator) selfNull(entry uint64) {
	e.prog.mu.Lock()
	site, ok := e.prog.coverageSites[entry]
	e.prog.mu.Unlock()
	if !ok {
		return
	}
	start, end := site[0], site[1]
	if end <= start {
		return
	}
	_ = e.prog.Cache.Patch(start, codecache.Nop(end-start))
}

// enter materializes the eight reserved-register pointers and calls
// into compiled host code at offset, then reads the exit-info block
// the call wrote back.
func (e *Emulator) enter(offset int) {
	var coverageBase uintptr
	if e.prog.Coverage != nil {
		coverageBase = uintptr(unsafe.Pointer(e.prog.Coverage.Base()))
	}
	if e.prog.CmpCov != nil {
		// the CMPCOV base has no dedicated reserved host register (all
		// sixteen are already spoken for, see internal/jit/regs.go), so
		// it rides in the register file's reservedCmpCovBaseOff slot
		// instead -- refreshed here rather than left to Regs.Reset,
		// since it is a constant host pointer, not per-case state.
		e.Regs.SetCmpCovBase(uintptr(unsafe.Pointer(e.prog.CmpCov.Base())))
	}
	state := &hostState{
		entry:           e.prog.Cache.Entry(offset),
		memBase:         uintptr(unsafe.Pointer(e.Mem.MemoryBase())),
		permBase:        uintptr(unsafe.Pointer(e.Mem.PermBase())),
		regBase:         uintptr(unsafe.Pointer(e.Regs.Base())),
		transBase:       uintptr(unsafe.Pointer(e.prog.Cache.TableBase())),
		dirtyBitmapBase: uintptr(unsafe.Pointer(e.Mem.DirtyBitmapBase())),
		dirtyVecBase:    uintptr(unsafe.Pointer(e.Mem.DirtyVecBase())),
		coverageBase:    coverageBase,
		exitInfo:        uintptr(unsafe.Pointer(&e.exitInfo)),
	}
	enterJIT(state)
}
