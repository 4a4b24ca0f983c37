package emulator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/seal9055/sfuzz/internal/codecache"
	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/jit"
	"github.com/seal9055/sfuzz/internal/lifter"
	"github.com/seal9055/sfuzz/internal/mmu"
	"github.com/seal9055/sfuzz/internal/riscv"
)

// FunctionRange is a [Entry, Entry+Size) span of guest code the lifter
// should treat as one compilation unit (spec.md §4.2's contract input).
type FunctionRange struct {
	Entry uint64
	Size  uint64
}

// FunctionResolver supplies function-range discovery, normally backed
// by the ELF symbol table (spec.md §4.2: "from a pre-built map of
// function ranges"). internal/elf implements this once loaded.
type FunctionResolver interface {
	RangeContaining(pc uint64) (FunctionRange, bool)
}

// probeWindow is the span lifted when no FunctionResolver is attached
// (e.g. in unit tests that drive the dispatcher directly): the lifter's
// own leader/control-flow-ending analysis still splits it into proper
// basic blocks, this only bounds how far it reads ahead.
const probeWindow = 4096

// Program is the state every worker thread's Emulator shares: the code
// cache, coverage/crash maps, hook and syscall tables, and the handful
// of bookkeeping structures the dispatcher needs to self-null coverage
// sites across functions compiled by any thread (spec.md §9 "Global
// mutable state ... constructed before threads spawn, destroyed only
// at shutdown").
type Program struct {
	Cache     *codecache.CodeCache
	Coverage  *coverage.Map
	CmpCov    *coverage.Map // dedicated per-byte compare-coverage map, spec.md §3; nil when disabled
	Crashes   *coverage.CrashSet
	Compiler  *jit.Compiler
	Functions FunctionResolver
	Hooks     *HookTable
	Syscalls  *SyscallTable
	VFiles    map[string][]byte

	InstrBudget uint64 // per-case instruction budget, calibrated or set via -t

	SnapshotPC uint64 // §4.6 "snapshot PC"; 0 means "snapshot at entry"
	ExitPC     uint64 // optional, ends a case cleanly without needing guest exit()

	mu            sync.Mutex
	coverageSites map[uint64][2]int // guest block-entry PC -> absolute [start,end) in Cache

	masterMu   sync.RWMutex
	masterMem  *mmu.Mmu
	masterRegs *RegisterFile
}

// NewProgram wires together a fresh shared state for one fuzzing run.
// When cmpcov is true, a second map of config.DefaultCoverageMapSize
// bytes is allocated for CMPCOV's per-byte slots (spec.md §3) -- kept separate
// from cov so a compare hit can never collide with or mask a real
// edge/block hit.
func NewProgram(cache *codecache.CodeCache, cov *coverage.Map, cmpcov, callStack bool) *Program {
	var cmpCovMap *coverage.Map
	if cmpcov {
		cmpCovMap = coverage.New(config.DefaultCoverageMapSize, config.CoverageNone)
	}
	return &Program{
		Cache:         cache,
		Coverage:      cov,
		CmpCov:        cmpCovMap,
		Crashes:       coverage.NewCrashSet(),
		Compiler:      &jit.Compiler{Coverage: cov, CmpCov: cmpCovMap, CallStack: callStack},
		Hooks:         NewHookTable(),
		Syscalls:      NewSyscallTable(),
		VFiles:        make(map[string][]byte),
		coverageSites: make(map[uint64][2]int),
	}
}

// SetMaster installs the snapshot image every Emulator resets from
// (internal/snapshot's job once the warm-up run reaches SnapshotPC).
func (p *Program) SetMaster(mem *mmu.Mmu, regs *RegisterFile) {
	p.masterMu.Lock()
	p.masterMem, p.masterRegs = mem, regs
	p.masterMu.Unlock()
}

func (p *Program) master() (*mmu.Mmu, *RegisterFile) {
	p.masterMu.RLock()
	defer p.masterMu.RUnlock()
	return p.masterMem, p.masterRegs
}

// Emulator is one worker thread's private state: its own MMU and
// register file, a reference to the shared Program, and per-case
// bookkeeping that must never be touched by another thread (spec.md
// §5 "Each worker thread exclusively owns its MMU and register file").
type Emulator struct {
	prog *Program

	Mem  *mmu.Mmu
	Regs *RegisterFile

	exitInfo jit.ExitInfo

	openFiles map[uint64]*virtualFile
	nextFD    int64

	InputAddr     uint64 // if nonzero, each case's input is written here before entry
	InputFileName string // if nonzero-length, each case's input backs this virtual file instead
}

// NewEmulator allocates a fresh per-thread MMU matching size and
// attaches it to prog's shared state. The caller populates Mem with
// the loaded ELF image before the first RunCase (or relies on
// Program.SetMaster / RunCase's reset to do so once a snapshot exists).
func NewEmulator(prog *Program, size uint64) (*Emulator, error) {
	mem, err := mmu.New(size)
	if err != nil {
		return nil, err
	}
	return &Emulator{
		prog:      prog,
		Mem:       mem,
		Regs:      &RegisterFile{},
		openFiles: make(map[uint64]*virtualFile),
		nextFD:    3, // 0,1,2 reserved for stdin/stdout/stderr
	}, nil
}

// reset restores Mem and Regs from the shared master snapshot and
// clears per-case bookkeeping (spec.md §4.6 "resetting between
// iterations uses the MMU dirty vector; the register file is
// overwritten wholesale").
func (e *Emulator) reset() {
	if master, masterRegs := e.prog.master(); master != nil {
		e.Mem.Reset(master)
		e.Regs.Reset(masterRegs)
	}
	e.exitInfo = jit.ExitInfo{}
	e.openFiles = make(map[uint64]*virtualFile)
	e.nextFD = 3
}

// stageInput writes input either into guest memory at InputAddr or
// registers it as the backing for InputFileName's virtual file,
// whichever the caller configured (spec.md §2 "stages the input ...
// either by writing into guest memory at a configured location or
// into a virtualized file backing").
func (e *Emulator) stageInput(input []byte) error {
	if e.InputAddr != 0 {
		if err := e.Mem.Write(e.InputAddr, input); err != nil {
			return err
		}
	}
	if e.InputFileName != "" {
		e.prog.VFiles[e.InputFileName] = input
	}
	return nil
}

// functionRangeFor resolves the lift window for pc, falling back to a
// fixed probe window when no FunctionResolver is attached. A window
// that would run across a later ExitPC ends right before it, so the
// dispatcher regains control at ExitPC.
func (e *Emulator) functionRangeFor(pc uint64) FunctionRange {
	var r FunctionRange
	ok := false
	if e.prog.Functions != nil {
		r, ok = e.prog.Functions.RangeContaining(pc)
	}
	if !ok {
		remaining := e.Mem.Size() - pc
		size := uint64(probeWindow)
		if remaining < size {
			size = remaining
		}
		r = FunctionRange{Entry: pc, Size: size}
	}
	if x := e.prog.ExitPC; x > pc && x < r.Entry+r.Size {
		r.Size = x - r.Entry
	}
	return r
}

// compile lifts and JITs the function containing pc under the cache's
// exclusive lock, double-checking the translation table first in case
// another thread raced us to it (spec.md §4.4 dispatcher step 2's
// NEED_COMPILE branch). It returns the host offset to enter pc at, or
// a crash classifying why lifting/compiling failed, or a fatal error
// for process-terminal conditions like cache exhaustion (spec.md §7
// "Code-cache full / allocation failure: fatal to the entire process").
func (e *Emulator) compile(pc uint64) (offset int, crash *coverage.Crash, fatal error) {
	e.prog.Cache.Lock()
	defer e.prog.Cache.Unlock()

	if off, ok := e.prog.Cache.Lookup(pc); ok {
		return off, nil, nil
	}

	r := e.functionRangeFor(pc)
	fn, err := lifter.Lift(e.Mem, r.Entry, r.Size)
	if err != nil {
		return 0, liftCrash(pc, err), nil
	}

	compiled, err := e.prog.Compiler.Compile(fn)
	if err != nil {
		return 0, &coverage.Crash{Kind: coverage.CrashIllegalInstruction, PC: pc}, nil
	}

	base, err := e.prog.Cache.Append(compiled.Code)
	if err != nil {
		return 0, nil, fmt.Errorf("emulator: code cache exhausted: %w", err)
	}
	for entry, hostOff := range compiled.Blocks {
		e.prog.Cache.Publish(entry, base+hostOff)
	}

	e.prog.mu.Lock()
	for entry, site := range compiled.CoverageSites {
		e.prog.coverageSites[entry] = [2]int{base + site[0], base + site[1]}
	}
	e.prog.mu.Unlock()

	off, ok := e.prog.Cache.Lookup(pc)
	if !ok {
		return 0, &coverage.Crash{Kind: coverage.CrashIllegalInstruction, PC: pc}, nil
	}
	return off, nil, nil
}

// liftCrash classifies a lifter.Lift failure: an unsupported opcode is
// an illegal-instruction crash at the offending PC; a fetch fault (the
// entry PC itself is not mapped executable) is an exec fault at
// whatever address the MMU rejected.
func liftCrash(fallbackPC uint64, err error) *coverage.Crash {
	var unsupported *riscv.ErrUnsupported
	if errors.As(err, &unsupported) {
		return &coverage.Crash{Kind: coverage.CrashIllegalInstruction, PC: unsupported.PC}
	}
	var fault *mmu.Fault
	if errors.As(err, &fault) {
		return &coverage.Crash{Kind: coverage.CrashExec, PC: fallbackPC, Addr: fault.Addr}
	}
	return &coverage.Crash{Kind: coverage.CrashIllegalInstruction, PC: fallbackPC}
}
