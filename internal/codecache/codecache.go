// Package codecache implements the shared, append-only host-code region
// and the guest-PC -> host-offset translation table described in
// spec.md §3 and §4.4. One CodeCache is constructed before worker
// threads spawn and lives until shutdown (spec.md §9 "Global mutable
// state"); every worker holds a reference to the same instance.
package codecache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// reservedPrologue is a few bytes of padding at the front of the cache
// so that host offset 0 unambiguously means "uncompiled" in the
// translation table (spec.md §3: "0 = uncompiled").
const reservedPrologue = 16

// CodeCache is the shared executable region plus the translation table.
// Writers (JIT compilations) are mutually exclusive; readers (cache
// lookups and entered-code execution) need no coordination beyond the
// atomic load that retrieves a slot (spec.md §5).
type CodeCache struct {
	region []byte // RWX-mapped backing store for compiled host code

	mu     sync.Mutex // serializes appenders; "write-exclusive" per spec.md §5
	cursor int

	table []uint64 // guest PC/4 -> host offset into region; atomic access only

	patchMu sync.Mutex // page-level lock held only while toggling W^X for a self-null patch

	pageSize int
}

// New allocates a code-cache region of size bytes and a translation
// table sized for a guest address space of guestAddrSpace bytes.
func New(size int, guestAddrSpace uint64) (*CodeCache, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("codecache: mmap: %w", err)
	}
	tableLen := (guestAddrSpace + 3) / 4
	cc := &CodeCache{
		region:   region,
		cursor:   reservedPrologue,
		table:    make([]uint64, tableLen),
		pageSize: unix.Getpagesize(),
	}
	return cc, nil
}

func (c *CodeCache) Close() error {
	if c.region == nil {
		return nil
	}
	err := unix.Munmap(c.region)
	c.region = nil
	return err
}

// BasePointer returns the region's base address, materialized by the
// JIT into a reserved host register so compiled code can compute
// absolute jump targets from table entries (spec.md §4.3).
func (c *CodeCache) BasePointer() *byte { return &c.region[0] }

// Entry returns the absolute host address of code previously Append-ed
// at offset, the address the dispatcher enters the JIT at.
func (c *CodeCache) Entry(offset int) uintptr {
	return uintptr(unsafe.Pointer(&c.region[offset]))
}

// TableBase returns a pointer to the translation table's backing array,
// materialized into the JIT's reserved translation-table register
// (currently unused by emitted code; see internal/jit/regs.go).
func (c *CodeCache) TableBase() *uint64 { return &c.table[0] }

// Lock acquires the exclusive append lock. Callers must pair with Unlock
// and should re-check Lookup after acquiring it (spec.md §4.4 dispatcher
// step "double-check the table").
func (c *CodeCache) Lock()   { c.mu.Lock() }
func (c *CodeCache) Unlock() { c.mu.Unlock() }

// Append writes code into the cache and returns its host offset. Must be
// called with Lock held. Entries are append-only and never relocated
// (spec.md §4.4 cache invariant). The bytes are written through Patch,
// since a page an earlier self-null patch touched is left read+exec.
func (c *CodeCache) Append(code []byte) (int, error) {
	if c.cursor+len(code) > len(c.region) {
		return 0, fmt.Errorf("codecache: out of space (%d/%d bytes used)", c.cursor, len(c.region))
	}
	offset := c.cursor
	if len(code) > 0 {
		if err := c.Patch(offset, code); err != nil {
			return 0, err
		}
	}
	c.cursor += len(code)
	return offset, nil
}

// Publish records offset as the host translation for guest pc, with
// release semantics so a concurrent Lookup that observes the new value
// also observes the code Append already wrote (spec.md §5 "Writers
// publish the host offset with release semantics; readers acquire").
func (c *CodeCache) Publish(pc uint64, offset int) {
	atomic.StoreUint64(&c.table[pc/4], uint64(offset)+1)
}

// Lookup returns the host offset compiled for guest pc, or ok=false if
// pc has not been translated yet. Never blocks (spec.md §5 "readers of
// compiled code never block").
func (c *CodeCache) Lookup(pc uint64) (offset int, ok bool) {
	idx := pc / 4
	if idx >= uint64(len(c.table)) {
		return 0, false
	}
	v := atomic.LoadUint64(&c.table[idx])
	if v == 0 {
		return 0, false
	}
	return int(v - 1), true
}

// Used reports how many bytes of the cache have been written, for
// statistics and for detecting imminent exhaustion.
func (c *CodeCache) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Capacity returns the cache's total size in bytes.
func (c *CodeCache) Capacity() int { return len(c.region) }

// Patch overwrites the len(newCode) bytes at offset with newCode,
// toggling the containing pages to writable for the duration (spec.md
// §9 "Patching executable memory ... plan for per-page mprotect-like
// operations with a page-level lock; do not leave pages simultaneously
// writable and executable"). Used by the dispatcher to self-null a
// one-shot coverage trampoline after it fires once, and by Append.
func (c *CodeCache) Patch(offset int, newCode []byte) error {
	if offset < 0 || offset+len(newCode) > len(c.region) {
		return fmt.Errorf("codecache: patch out of range")
	}
	c.patchMu.Lock()
	defer c.patchMu.Unlock()

	startPage := (offset / c.pageSize) * c.pageSize
	endPage := ((offset + len(newCode) + c.pageSize - 1) / c.pageSize) * c.pageSize
	if endPage > len(c.region) {
		endPage = len(c.region)
	}
	pages := c.region[startPage:endPage]

	if err := unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("codecache: mprotect rw: %w", err)
	}
	copy(c.region[offset:offset+len(newCode)], newCode)
	if err := unix.Mprotect(pages, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("codecache: mprotect rx: %w", err)
	}
	return nil
}

// Nop returns n bytes of the x86-64 single-byte NOP (0x90), the payload
// self-nulling patches write (spec.md §4.4 "rewrite the triggering host
// site to a no-op").
func Nop(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 0x90
	}
	return b
}
