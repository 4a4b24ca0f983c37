package emulator

// The methods in this file are the literal spec.md §4.7 orchestrator
// contract, thinly wrapping the tables above so callers outside this
// package (internal/orchestrator, internal/snapshot) have one place to
// read it from instead of reaching into Hooks/Syscalls directly.

// SnapshotAt records the guest PC a warm-up run should stop at and
// snapshot from (internal/snapshot drives the actual warm-up case and
// calls Program.SetMaster once it gets there).
func (p *Program) SnapshotAt(pc uint64) { p.SnapshotPC = pc }

// AddHook installs h at guest address addr.
func (p *Program) AddHook(addr uint64, h HookHandler) { p.Hooks.AddHook(addr, h) }

// RegisterSymbolHook installs h at name's address once the ELF loader
// resolves it (or immediately, if it already has).
func (p *Program) RegisterSymbolHook(name string, h HookHandler) { p.Hooks.RegisterSymbolHook(name, h) }

// SetSyscallHandler installs or overrides the handler for syscall
// number num.
func (p *Program) SetSyscallHandler(num uint64, h SyscallHandler) { p.Syscalls.SetHandler(num, h) }
