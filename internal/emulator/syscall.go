package emulator

import "fmt"

// RISC-V integer calling convention registers the syscall ABI uses:
// the syscall number in a7, arguments in a0-a5, the result written
// back to a0 (spec.md §6).
const (
	regA0 = 10
	regA7 = 17
)

// Syscall numbers for the RV64 Linux ABI entries spec.md §6 names.
// RV64 dropped the legacy open(2) in favor of openat(2); sfuzz treats
// openat's dirfd as ignored and ties it to the same virtual-file
// handler the spec calls "open".
const (
	SysRead    = 63
	SysWrite   = 64
	SysClose   = 57
	SysFstat   = 80
	SysOpenAt  = 56
	SysBrk     = 214
	SysExit    = 93
	SysExitGrp = 94
)

// SyscallHandler implements one syscall number's behavior. args holds
// a0-a5 in order; the returned value is written back into a0. Returning
// exited=true ends the current fuzz case cleanly (spec.md §6 "exit").
type SyscallHandler func(e *Emulator, args [6]uint64) (result int64, exited bool)

// SyscallTable is the capability set spec.md §9 describes: "a table
// keyed by syscall number ... avoid runtime polymorphism in hot paths."
// It is shared across every Emulator sharing a Program; handlers must
// not retain per-case state (each Emulator carries its own open-file
// table).
type SyscallTable struct {
	handlers map[uint64]SyscallHandler
}

// NewSyscallTable builds a table pre-populated with the built-in
// defaults for write/exit/brk and the virtualized-file handlers for
// open/read/close (spec.md §9's "built-in (write/exit/brk),
// virtualized-file" variants). close/write/fstat/exit/brk's exact
// bodies are explicitly out of this module's core scope (spec.md §1);
// these defaults exist so a target can run before the orchestrator
// installs anything more faithful via SetHandler.
func NewSyscallTable() *SyscallTable {
	t := &SyscallTable{handlers: make(map[uint64]SyscallHandler)}
	t.handlers[SysWrite] = sysWrite
	t.handlers[SysRead] = sysRead
	t.handlers[SysOpenAt] = sysOpenAt
	t.handlers[SysClose] = sysClose
	t.handlers[SysFstat] = sysFstat
	t.handlers[SysBrk] = sysBrk
	t.handlers[SysExit] = sysExit
	t.handlers[SysExitGrp] = sysExit
	return t
}

// SetHandler installs or replaces the handler for syscall number num,
// spec.md §4.7's set_syscall_handler.
func (t *SyscallTable) SetHandler(num uint64, h SyscallHandler) {
	t.handlers[num] = h
}

func sysWrite(e *Emulator, args [6]uint64) (int64, bool) {
	fd, addr, length := int64(args[0]), args[1], args[2]
	if fd != 1 && fd != 2 {
		return -1, false
	}
	data, err := e.Mem.Read(addr, length)
	if err != nil {
		return -1, false
	}
	fmt.Printf("%s", data)
	return int64(length), false
}

func sysRead(e *Emulator, args [6]uint64) (int64, bool) {
	fd, addr, length := args[0], args[1], int(args[2])
	vf, ok := e.openFiles[fd]
	if !ok {
		return -1, false
	}
	chunk := vf.read(length)
	if err := e.Mem.Write(addr, chunk); err != nil {
		return -1, false
	}
	return int64(len(chunk)), false
}

func sysOpenAt(e *Emulator, args [6]uint64) (int64, bool) {
	pathAddr := args[1]
	name, err := e.readCString(pathAddr, 4096)
	if err != nil {
		return -1, false
	}
	contents, ok := e.prog.VFiles[name]
	if !ok {
		return -1, false
	}
	fd := e.nextFD
	e.nextFD++
	e.openFiles[uint64(fd)] = &virtualFile{data: contents}
	return fd, false
}

func sysClose(e *Emulator, args [6]uint64) (int64, bool) {
	delete(e.openFiles, args[0])
	return 0, false
}

func sysFstat(*Emulator, [6]uint64) (int64, bool) {
	// no statbuf contents are populated; targets in this module's
	// intended corpus only check the return value, not stat fields.
	return 0, false
}

func sysBrk(e *Emulator, args [6]uint64) (int64, bool) {
	newEnd := args[0]
	if newEnd == 0 {
		return int64(e.Mem.HeapPointer()), false
	}
	if err := e.Mem.GrowHeap(newEnd); err != nil {
		return int64(e.Mem.HeapPointer()), false
	}
	return int64(newEnd), false
}

func sysExit(*Emulator, [6]uint64) (int64, bool) {
	return 0, true
}

// readCString reads up to max bytes at addr, stopping at the first NUL.
func (e *Emulator) readCString(addr uint64, max int) (string, error) {
	buf := make([]byte, 0, 64)
	for i := 0; i < max; i++ {
		b, err := e.Mem.Read(addr+uint64(i), 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			break
		}
		buf = append(buf, b[0])
	}
	return string(buf), nil
}
