package mmu

import "fmt"

// Kind identifies the taxonomy of memory faults from spec.md §7.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
	KindExec
	KindOOB
	KindInvalidFree
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "READ_FAULT"
	case KindWrite:
		return "WRITE_FAULT"
	case KindExec:
		return "EXEC_FAULT"
	case KindOOB:
		return "OOB"
	case KindInvalidFree:
		return "INVALID_FREE"
	default:
		return "UNKNOWN_FAULT"
	}
}

// Fault is the error type every permission/bounds violation is reported
// as. The MMU never retries past a Fault (spec.md §4.1 Failure semantics);
// the caller (the emulator's dispatcher) decides what to do with it.
type Fault struct {
	Kind Kind
	Addr uint64
	Len  uint64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s at 0x%x (len %d)", f.Kind, f.Addr, f.Len)
}

func newFault(k Kind, addr, length uint64) *Fault {
	return &Fault{Kind: k, Addr: addr, Len: length}
}
