package emulator

import "github.com/seal9055/sfuzz/internal/mmu"

// HookHandler replaces a guest function body outright: it runs host
// code instead of the guest instructions at that address and returns
// the guest PC execution resumes at (spec.md §3 "Hook: a guest address
// whose execution transfers control to a host-supplied handler instead
// of executing the guest instruction"). A non-nil fault aborts the case
// exactly as if the JIT itself had raised jit.ExitFault -- a hook that
// operates on guest memory through the MMU (free/strlen/strcmp) must
// surface the MMU's real error instead of swallowing it, or
// spec.md §8's double-free property can never be observed end to end.
type HookHandler func(e *Emulator) (reentry uint64, fault *mmu.Fault)

// HookTable is the address-keyed capability set spec.md §9 describes
// for malloc/free-style replacements. Hooks are commonly installed by
// symbol name before the ELF loader has resolved addresses, so a
// registration can be pending until SetSymbolAddress supplies one.
type HookTable struct {
	byAddr   map[uint64]HookHandler
	bySymbol map[string]HookHandler
	symbols  map[string]uint64
}

func NewHookTable() *HookTable {
	return &HookTable{
		byAddr:   make(map[uint64]HookHandler),
		bySymbol: make(map[string]HookHandler),
		symbols:  make(map[string]uint64),
	}
}

// AddHook installs h directly at addr, spec.md §4.7's add_hook.
func (t *HookTable) AddHook(addr uint64, h HookHandler) {
	t.byAddr[addr] = h
}

// RegisterSymbolHook installs h at name's resolved address if already
// known, otherwise defers until SetSymbolAddress(name, ...) arrives --
// the pattern-matching-the-symbol-table mechanism spec.md §6 specifies
// for malloc/free.
func (t *HookTable) RegisterSymbolHook(name string, h HookHandler) {
	if addr, ok := t.symbols[name]; ok {
		t.byAddr[addr] = h
		return
	}
	t.bySymbol[name] = h
}

// SetSymbolAddress is called once per resolved symbol while loading the
// target ELF; it both records the address for future RegisterSymbolHook
// calls and installs any hook that was already waiting on this name.
func (t *HookTable) SetSymbolAddress(name string, addr uint64) {
	t.symbols[name] = addr
	if h, ok := t.bySymbol[name]; ok {
		t.byAddr[addr] = h
		delete(t.bySymbol, name)
	}
}

func (t *HookTable) lookup(addr uint64) (HookHandler, bool) {
	h, ok := t.byAddr[addr]
	return h, ok
}

// DefaultMallocHook returns sfuzz's bump-allocator malloc replacement
// (spec.md §6: "malloc(size) returns a guarded, RAW-stamped region").
// Allocation failure (heap exhaustion) is reported to the guest as a
// NULL return per the libc contract, not as a fault -- it is not a
// memory-safety violation.
func DefaultMallocHook() HookHandler {
	return func(e *Emulator) (uint64, *mmu.Fault) {
		size := e.Regs.Get(regA0X)
		addr, err := e.Mem.Allocate(size)
		if err != nil {
			addr = 0
		}
		e.Regs.Set(regA0X, addr)
		return e.Regs.Get(regRAX), nil
	}
}

// DefaultCallocHook zero-fills the allocation calloc promises on top of
// DefaultMallocHook's guard/RAW behavior.
func DefaultCallocHook() HookHandler {
	return func(e *Emulator) (uint64, *mmu.Fault) {
		n, size := e.Regs.Get(regA0X), e.Regs.Get(regA1X)
		total := n * size
		addr, err := e.Mem.Allocate(total)
		if err == nil {
			zero := make([]byte, total)
			_ = e.Mem.Write(addr, zero)
		} else {
			addr = 0
		}
		e.Regs.Set(regA0X, addr)
		return e.Regs.Get(regRAX), nil
	}
}

// DefaultFreeHook quarantines the payload (spec.md §6 "free(addr)
// clears permissions and quarantines the payload"). A double free or a
// free of a non-allocation address comes back from the MMU as
// mmu.KindInvalidFree and is surfaced as a real fault, the same outcome
// a guest-code double free would produce if free() were not hooked --
// spec.md §8's "the second free … never succeeds" property.
func DefaultFreeHook() HookHandler {
	return func(e *Emulator) (uint64, *mmu.Fault) {
		addr := e.Regs.Get(regA0X)
		if err := e.Mem.Free(addr); err != nil {
			return 0, err.(*mmu.Fault)
		}
		return e.Regs.Get(regRAX), nil
	}
}

// DefaultStrlenHook walks guest memory until a NUL, returning the count
// as the length. Any other error (a permission fault, an out-of-bounds
// read) is surfaced as a real fault rather than being treated as an
// early NUL -- a strlen() that walks off the end of an unterminated
// buffer is exactly the kind of bug this fuzzer exists to find.
func DefaultStrlenHook() HookHandler {
	return func(e *Emulator) (uint64, *mmu.Fault) {
		addr := e.Regs.Get(regA0X)
		var n uint64
		for {
			b, err := e.Mem.Read(addr+n, 1)
			if err != nil {
				return 0, err.(*mmu.Fault)
			}
			if b[0] == 0 {
				break
			}
			n++
		}
		e.Regs.Set(regA0X, n)
		return e.Regs.Get(regRAX), nil
	}
}

// DefaultStrcmpHook compares two NUL-terminated guest strings byte by
// byte, returning the signed difference of the first mismatching pair.
// As with strlen, a read fault on either string is a real crash, not a
// silent end of comparison.
func DefaultStrcmpHook() HookHandler {
	return func(e *Emulator) (uint64, *mmu.Fault) {
		a, b := e.Regs.Get(regA0X), e.Regs.Get(regA1X)
		var diff int64
		for i := uint64(0); ; i++ {
			ba, erra := e.Mem.Read(a+i, 1)
			if erra != nil {
				return 0, erra.(*mmu.Fault)
			}
			bb, errb := e.Mem.Read(b+i, 1)
			if errb != nil {
				return 0, errb.(*mmu.Fault)
			}
			diff = int64(ba[0]) - int64(bb[0])
			if diff != 0 || ba[0] == 0 {
				break
			}
		}
		e.Regs.Set(regA0X, uint64(diff))
		return e.Regs.Get(regRAX), nil
	}
}

// regA0X/regA1X/regRAX name the RISC-V x-register indices hooks read
// their arguments from and write their return address to, spelled out
// separately from the syscall ABI constants in syscall.go since hooks read the
// standard integer calling convention (a0=x10, a1=x11, ra=x1), not the
// syscall convention (a7=x17).
const (
	regA0X = 10
	regA1X = 11
	regRAX = 1 // ra: the return address a hook resumes execution at
)
