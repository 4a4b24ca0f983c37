// Package mmu implements sfuzz's byte-granular, permission-tagged guest
// memory manager (spec.md §3, §4.1). Each worker thread owns one Mmu
// exclusively; there is no internal synchronization (§5 "Dirty vector /
// bitmap: thread-local; no synchronization").
package mmu

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the dirty-tracking granularity, matching the teacher's
// PageSize constant (pvm/recompiler/recompiler.go).
const PageSize = 4096

// Mmu is a flat guest address space paired with a permission byte per
// guest byte and a page-granular dirty log.
type Mmu struct {
	memory []byte
	perms  []byte

	numPages uint64

	// dirtyBitmap is bit-packed (one bit per page) rather than a []bool so
	// the JIT's compiled stores can set bits directly through a raw
	// pointer (SPEC_FULL.md §4.3's reserved dirty-bitmap-base register)
	// using the exact same layout the interpreter path below writes.
	dirtyBitmap []byte

	// dirtyVec is a fixed-capacity append log: index 0 is the entry count
	// ("cursor"), indices [1, cursor] are touched page numbers. A flat
	// cursor-plus-array layout, rather than a Go slice, so compiled code
	// can append to it with two raw stores (SPEC_FULL.md §4.3's reserved
	// dirty-vector register points at index 0 of this array).
	dirtyVec []uint64

	heapPtr uint64 // bump allocator cursor
	heapEnd uint64
}

// New allocates a guest address space of size bytes, backed by an
// anonymous mmap so the slice's address is stable for the lifetime of
// the process -- the JIT's calling convention (spec.md §4.3) holds a raw
// pointer to this memory for the whole fuzz case.
func New(size uint64) (*Mmu, error) {
	mem, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmu: mmap guest memory: %w", err)
	}
	numPages := (size + PageSize - 1) / PageSize
	return &Mmu{
		memory:      mem,
		perms:       make([]byte, size),
		numPages:    numPages,
		dirtyBitmap: make([]byte, (numPages+7)/8),
		dirtyVec:    make([]uint64, numPages+1), // +1 for the cursor word at index 0
		heapPtr:     0,
		heapEnd:     size,
	}, nil
}

// Close releases the underlying mapping.
func (m *Mmu) Close() error {
	if m.memory == nil {
		return nil
	}
	err := unix.Munmap(m.memory)
	m.memory = nil
	return err
}

// Size returns the guest address space size in bytes.
func (m *Mmu) Size() uint64 { return uint64(len(m.memory)) }

// MemoryBase returns the raw base pointer the JIT materializes into a
// reserved host register. Only the jit and emulator packages call this.
func (m *Mmu) MemoryBase() *byte { return &m.memory[0] }

// PermBase returns the raw base pointer to the permission byte array.
func (m *Mmu) PermBase() *byte { return &m.perms[0] }

// DirtyBitmapBase returns the raw base pointer to the bit-packed dirty
// bitmap, materialized into the JIT's reserved dirty-bitmap register.
func (m *Mmu) DirtyBitmapBase() *byte { return &m.dirtyBitmap[0] }

// DirtyVecBase returns a pointer to the dirty vector's cursor word
// (index 0); the page-number array immediately follows it in memory,
// materialized into the JIT's reserved dirty-vector register.
func (m *Mmu) DirtyVecBase() *uint64 { return &m.dirtyVec[0] }

func (m *Mmu) pageOf(addr uint64) uint64 { return addr / PageSize }

func (m *Mmu) inBounds(addr, length uint64) bool {
	if length == 0 {
		return addr <= uint64(len(m.memory))
	}
	end := addr + length
	return end >= addr && end <= uint64(len(m.memory))
}

// markDirty records every page touched by [addr, addr+length) in the
// dirty vector/bitmap, per spec.md §3's dirty tracking invariant: a page
// is appended at most once between resets.
func (m *Mmu) markDirty(addr, length uint64) {
	if length == 0 {
		return
	}
	startPage := m.pageOf(addr)
	endPage := m.pageOf(addr + length - 1)
	for p := startPage; p <= endPage; p++ {
		m.markPageDirty(p)
	}
}

// markPageDirty sets page's bit in the packed bitmap and, on the 0->1
// transition, appends it to the dirty vector using the same
// cursor-plus-array layout the JIT writes directly (mmu.go's struct
// comment on dirtyVec).
func (m *Mmu) markPageDirty(page uint64) {
	byteIdx, bit := page/8, byte(1<<(page%8))
	if m.dirtyBitmap[byteIdx]&bit != 0 {
		return
	}
	m.dirtyBitmap[byteIdx] |= bit
	cursor := m.dirtyVec[0]
	m.dirtyVec[1+cursor] = page
	m.dirtyVec[0] = cursor + 1
}

// Read returns a copy of [addr, addr+length), failing if any byte in the
// range lacks PermRead (spec.md §4.1 contract).
func (m *Mmu) Read(addr, length uint64) ([]byte, error) {
	if !m.inBounds(addr, length) {
		return nil, newFault(KindOOB, addr, length)
	}
	for i := uint64(0); i < length; i++ {
		if Perm(m.perms[addr+i])&PermRead == 0 {
			return nil, newFault(KindRead, addr+i, length)
		}
	}
	out := make([]byte, length)
	copy(out, m.memory[addr:addr+length])
	return out, nil
}

// ReadInto reads into dst without allocating, used by the interpreter
// fallback and by syscall bodies that already own a destination buffer.
func (m *Mmu) ReadInto(dst []byte, addr uint64) error {
	length := uint64(len(dst))
	if !m.inBounds(addr, length) {
		return newFault(KindOOB, addr, length)
	}
	for i := uint64(0); i < length; i++ {
		if Perm(m.perms[addr+i])&PermRead == 0 {
			return newFault(KindRead, addr+i, length)
		}
	}
	copy(dst, m.memory[addr:addr+length])
	return nil
}

// Write requires every touched byte to carry PermWrite; on success, RAW
// bytes are upgraded to also carry PermRead and the touched pages are
// recorded dirty (spec.md §4.1).
func (m *Mmu) Write(addr uint64, data []byte) error {
	length := uint64(len(data))
	if !m.inBounds(addr, length) {
		return newFault(KindOOB, addr, length)
	}
	for i := uint64(0); i < length; i++ {
		if Perm(m.perms[addr+i])&PermWrite == 0 {
			return newFault(KindWrite, addr+i, length)
		}
	}
	for i := uint64(0); i < length; i++ {
		if Perm(m.perms[addr+i])&PermRAW != 0 {
			m.perms[addr+i] |= byte(PermRead)
		}
	}
	copy(m.memory[addr:addr+length], data)
	m.markDirty(addr, length)
	return nil
}

// FetchInstruction reads a 4-byte RV64I instruction word, requiring both
// PermRead and PermExec (the JIT's permission check for code fetch).
func (m *Mmu) FetchInstruction(addr uint64) (uint32, error) {
	if !m.inBounds(addr, 4) {
		return 0, newFault(KindOOB, addr, 4)
	}
	for i := uint64(0); i < 4; i++ {
		if Perm(m.perms[addr+i])&(PermRead|PermExec) != (PermRead | PermExec) {
			return 0, newFault(KindExec, addr+i, 4)
		}
	}
	return binary.LittleEndian.Uint32(m.memory[addr : addr+4]), nil
}

// SetPermissions sets the permission byte of every address in
// [addr, addr+length) to perm. Permission changes are content changes
// for reset purposes (ELF loading, allocator bookkeeping) so the touched
// pages are marked dirty the same way a write would.
func (m *Mmu) SetPermissions(addr, length uint64, perm Perm) error {
	if !m.inBounds(addr, length) {
		return newFault(KindOOB, addr, length)
	}
	p := byte(perm &^ permAllocMeta)
	for i := uint64(0); i < length; i++ {
		m.perms[addr+i] = p
	}
	m.markDirty(addr, length)
	return nil
}

// PermissionsAt returns the raw permission byte at addr, for tests and
// for the boundary-behavior property in spec.md §8 ("permission bytes
// outside any live allocation equal their snapshot values").
func (m *Mmu) PermissionsAt(addr uint64) Perm { return Perm(m.perms[addr]) }

// LoadBytes writes raw bytes into memory bypassing permission checks,
// used only during ELF segment loading before permissions are applied.
func (m *Mmu) LoadBytes(addr uint64, data []byte) error {
	if !m.inBounds(addr, uint64(len(data))) {
		return newFault(KindOOB, addr, uint64(len(data)))
	}
	copy(m.memory[addr:addr+uint64(len(data))], data)
	m.markDirty(addr, uint64(len(data)))
	return nil
}

// DirtyPageCount reports the number of pages touched since the last
// Reset, for statistics and for the dirty-vector invariant tests.
func (m *Mmu) DirtyPageCount() int { return int(m.dirtyVec[0]) }

// Reset walks the dirty vector and restores each touched page's bytes
// and permissions from master, then clears the dirty log (spec.md §4.1,
// §8's reset invariant).
func (m *Mmu) Reset(master *Mmu) {
	cursor := m.dirtyVec[0]
	for i := uint64(0); i < cursor; i++ {
		page := m.dirtyVec[1+i]
		start := page * PageSize
		end := start + PageSize
		if end > uint64(len(m.memory)) {
			end = uint64(len(m.memory))
		}
		copy(m.memory[start:end], master.memory[start:end])
		copy(m.perms[start:end], master.perms[start:end])
		m.dirtyBitmap[page/8] &^= 1 << (page % 8)
	}
	m.dirtyVec[0] = 0
	m.heapPtr = master.heapPtr
	m.heapEnd = master.heapEnd
}

// Clone deep-copies the whole address space and permission map, used to
// construct the master snapshot (internal/snapshot) and by per-thread
// emulator setup.
func (m *Mmu) Clone() (*Mmu, error) {
	clone, err := New(uint64(len(m.memory)))
	if err != nil {
		return nil, err
	}
	copy(clone.memory, m.memory)
	copy(clone.perms, m.perms)
	clone.heapPtr = m.heapPtr
	clone.heapEnd = m.heapEnd
	return clone, nil
}
