package main

import (
	"encoding/binary"
	"fmt"

	"github.com/seal9055/sfuzz/internal/codecache"
	"github.com/seal9055/sfuzz/internal/config"
	"github.com/seal9055/sfuzz/internal/coverage"
	"github.com/seal9055/sfuzz/internal/elf"
	"github.com/seal9055/sfuzz/internal/emulator"
)

// RISC-V integer ABI register index this file needs for stack setup
// (x2 = sp; argv/envp/auxp are pushed below it per the standard
// calling convention main.rs's push! macro follows).
const regSP = 2

// stackSize is the guest stack's size, matching main.rs's
// `1024 * 1024` allocation.
const stackSize = 1024 * 1024

// argSlotSize bounds how much space each argv string gets in guest
// memory; generous enough for a target path plus NUL.
const argSlotSize = 256

// inputFileName is the virtual file every fuzz case's bytes are staged
// into, the Go equivalent of main.rs's commented-out "fuzz_input"
// argv[1] convention: the target is expected to open and read this
// name rather than stdin, so one virtualized-file handler covers every
// harness.
const inputFileName = "fuzz_input"

// target bundles the shared Program with everything needed to mint
// fresh per-thread Emulators: the memory size every one gets allocated
// at, and the fully set-up "primary" Emulator (ELF segments loaded,
// stack and argv pushed, PC at the entry point) used for the one-time
// snapshot warm-up and seed calibration runs.
type target struct {
	prog    *emulator.Program
	primary *emulator.Emulator
	memSize uint64
}

// buildTarget loads path, constructs the shared Program, and builds
// the one fully-initialized Emulator every other worker's reset will
// be based on once internal/snapshot captures it as the master image
// (spec.md §4.6: every Emulator.reset rebuilds from that single
// snapshot, so only this one needs real ELF/stack content up front).
func buildTarget(path string, args []string, cfg config.Config) (*target, error) {
	cache, err := codecache.New(64*1024, uint64(cfg.CodeCacheSize))
	if err != nil {
		return nil, fmt.Errorf("sfuzz: code cache: %w", err)
	}
	cov := coverage.New(cfg.CoverageMapSize, cfg.CoverageMode)
	prog := emulator.NewProgram(cache, cov, cfg.CmpCov, cfg.CallStackCoverage)
	prog.SnapshotAt(cfg.SnapshotPC)

	e, err := emulator.NewEmulator(prog, cfg.GuestMemSize)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("sfuzz: guest memory: %w", err)
	}

	img, err := elf.Load(path, e.Mem)
	if err != nil {
		_ = e.Mem.Close()
		_ = cache.Close()
		return nil, fmt.Errorf("sfuzz: load %s: %w", path, err)
	}
	prog.Functions = img
	img.InstallSymbolHooks(prog.Hooks)
	installDefaultHooks(prog)

	if err := setupStack(e, args); err != nil {
		_ = e.Mem.Close()
		_ = cache.Close()
		return nil, fmt.Errorf("sfuzz: stack setup: %w", err)
	}
	e.Regs.SetPC(img.Entry)
	e.InputFileName = inputFileName

	return &target{prog: prog, primary: e, memSize: cfg.GuestMemSize}, nil
}

// installDefaultHooks registers the malloc/calloc/free/strlen/strcmp
// replacements by symbol name, mirroring main.rs's insert_hooks -- a
// symbol that doesn't exist in the target just never fires, which
// RegisterSymbolHook already handles by deferring silently.
func installDefaultHooks(prog *emulator.Program) {
	prog.RegisterSymbolHook("malloc", emulator.DefaultMallocHook())
	prog.RegisterSymbolHook("_malloc_r", emulator.DefaultMallocHook())
	prog.RegisterSymbolHook("calloc", emulator.DefaultCallocHook())
	prog.RegisterSymbolHook("_calloc_r", emulator.DefaultCallocHook())
	prog.RegisterSymbolHook("free", emulator.DefaultFreeHook())
	prog.RegisterSymbolHook("_free_r", emulator.DefaultFreeHook())
	prog.RegisterSymbolHook("strlen", emulator.DefaultStrlenHook())
	prog.RegisterSymbolHook("strcmp", emulator.DefaultStrcmpHook())
}

// setupStack allocates the guest stack and argv strings and pushes
// argc/argv/envp/auxp onto it, the Go equivalent of main.rs's push!
// macro sequence (auxp, envp, argv NUL terminator, argv in reverse,
// argc).
func setupStack(e *emulator.Emulator, args []string) error {
	stackBase, err := e.Mem.Allocate(stackSize)
	if err != nil {
		return fmt.Errorf("allocate stack: %w", err)
	}
	sp := (stackBase + stackSize) - 8

	argv := make([]uint64, len(args))
	for i, a := range args {
		addr, err := e.Mem.Allocate(argSlotSize)
		if err != nil {
			return fmt.Errorf("allocate argv[%d]: %w", i, err)
		}
		if err := e.Mem.Write(addr, append([]byte(a), 0)); err != nil {
			return fmt.Errorf("write argv[%d]: %w", i, err)
		}
		argv[i] = addr
	}

	push := func(v uint64) {
		sp -= 8
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		_ = e.Mem.Write(sp, buf[:])
	}

	push(0) // auxp
	push(0) // envp
	push(0) // argv NUL terminator
	for i := len(argv) - 1; i >= 0; i-- {
		push(argv[i])
	}
	push(uint64(len(argv))) // argc

	e.Regs.Set(regSP, sp)
	return nil
}

// newEmulator mints a fresh per-thread Emulator sharing t.prog's code
// cache, coverage map, and crash set. Its Mem only needs to be the
// right size: every RunCase starts with a reset from the shared master
// snapshot, which overwrites whatever this Emulator's Mmu held at
// construction (spec.md §4.6).
func (t *target) newEmulator() (*emulator.Emulator, error) {
	e, err := emulator.NewEmulator(t.prog, t.memSize)
	if err != nil {
		return nil, err
	}
	e.InputFileName = inputFileName
	return e, nil
}
