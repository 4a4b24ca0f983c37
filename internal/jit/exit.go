package jit

// ExitCode is the reason recompiled code returned control to the
// dispatcher, matching spec.md §4.4's exit taxonomy.
type ExitCode uint64

const (
	ExitNeedCompile ExitCode = iota // aux unused; pc = guest PC to translate and re-enter
	ExitSyscall                     // pc = guest PC of the ecall; aux unused (the emulator reads the syscall number from a7)
	ExitHook                        // pc = guest PC of the hook site; aux = hook id
	ExitCoverageNew                 // pc = guest PC of the new block; aux = coverage index the dispatcher records
	ExitFault                       // pc = faulting guest PC; aux = mmu.Kind packed with the address by compiled code (see UnpackFault)
	ExitTimeout                     // instruction budget exhausted; pc = current guest PC
	ExitDebug                       // ebreak; pc = guest PC of the ebreak
)

func (e ExitCode) String() string {
	switch e {
	case ExitNeedCompile:
		return "NEED_COMPILE"
	case ExitSyscall:
		return "SYSCALL"
	case ExitHook:
		return "HOOK"
	case ExitCoverageNew:
		return "COVERAGE_NEW"
	case ExitFault:
		return "FAULT"
	case ExitTimeout:
		return "TIMEOUT"
	case ExitDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ExitInfo is the fixed-layout block regExitInfo (RBP) points at for
// the lifetime of a JIT entry. Every exit path writes all three words
// before `ret`; the emulator reads it back after the host call
// returns, the same role the teacher's regBuf dump plays in
// x86_execute.go, but written directly by the JIT instead of read out
// of a post-mortem register dump.
// InstrCount/InstrBudget are not part of the exit protocol proper --
// they back the always-live per-block instruction-budget check
// (spec.md §4.5 "a host-side instruction counter incremented on a
// schedule ... checked against a budget calibrated from initial
// seeds"). They live in the same block as Code/PC/Aux because compiled
// code has no spare reserved register to point a dedicated counter
// location, and the dispatcher already holds a pointer to this block
// in regExitInfo. The emulator sets InstrBudget once per case and
// reads InstrCount back only for statistics; compiled code owns both.
type ExitInfo struct {
	Code        ExitCode
	PC          uint64
	Aux         uint64
	InstrCount  uint64
	InstrBudget uint64
}

// exitInfoOffsets mirrors the field layout of ExitInfo for emitted
// stores (each field is one 8-byte word, in declaration order).
const (
	exitInfoCodeOff        = 0
	exitInfoPCOff          = 8
	exitInfoAuxOff         = 16
	exitInfoInstrCountOff  = 24
	exitInfoInstrBudgetOff = 32
)

// emitExit writes code/pc/aux into the exit-info block and returns
// from the compiled unit. Used for every dispatcher exit: NEED_COMPILE
// targets outside the current compiled function, syscalls, hooks,
// faults, and ebreak.
func (a *asm) emitExit(code ExitCode, pc uint64, aux uint64) {
	a.movImm64(scratchA, uint64(code))
	a.storeMem(regExitInfo, exitInfoCodeOff, scratchA, 8)
	a.movImm64(scratchA, pc)
	a.storeMem(regExitInfo, exitInfoPCOff, scratchA, 8)
	a.movImm64(scratchA, aux)
	a.storeMem(regExitInfo, exitInfoAuxOff, scratchA, 8)
	a.ret()
}

// emitExitFromReg is emitExit's counterpart for a PC that is only known
// at run time, held in pcReg (clobbered by this call).
func (a *asm) emitExitFromReg(pcReg byte, code ExitCode, aux uint64) {
	a.storeMem(regExitInfo, exitInfoPCOff, pcReg, 8)
	a.movImm64(scratchA, uint64(code))
	a.storeMem(regExitInfo, exitInfoCodeOff, scratchA, 8)
	a.movImm64(scratchA, aux)
	a.storeMem(regExitInfo, exitInfoAuxOff, scratchA, 8)
	a.ret()
}

// emitExitAuxReg is emitExit's counterpart for an Aux word that is only
// known at run time, held in auxReg (clobbered by this call). Used for
// ExitFault, whose Aux packs the faulting address computed at run time.
func (a *asm) emitExitAuxReg(pc uint64, code ExitCode, auxReg byte) {
	a.storeMem(regExitInfo, exitInfoAuxOff, auxReg, 8)
	a.movImm64(scratchA, uint64(code))
	a.storeMem(regExitInfo, exitInfoCodeOff, scratchA, 8)
	a.movImm64(scratchA, pc)
	a.storeMem(regExitInfo, exitInfoPCOff, scratchA, 8)
	a.ret()
}
