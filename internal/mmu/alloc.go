package mmu

import "encoding/binary"

// headerSize is the size of the inline allocation-size field sfuzz
// writes immediately before every payload, mirroring
// original_source/src/mmu.rs's Mmu::allocate inline size field.
const headerSize = 8

// guardSize is the width of the permission-cleared guard region placed
// on each side of a live allocation (spec.md §4.1: "the allocator
// inserts a guard byte on each side").
const guardSize = 8

// Allocate bump-allocates size bytes from the heap region, with a guard
// region before and after the payload and the payload itself stamped
// PermRAW|PermWrite (spec.md §4.1). It returns the payload's base
// address.
func (m *Mmu) Allocate(size uint64) (uint64, error) {
	if size == 0 {
		size = 1
	}
	// align so the header sits on an 8-byte boundary
	base := (m.heapPtr + 7) &^ 7
	headerAddr := base + guardSize
	payloadAddr := headerAddr + headerSize
	afterPayload := payloadAddr + size
	end := afterPayload + guardSize

	if end > m.heapEnd {
		return 0, newFault(KindOOB, m.heapPtr, size)
	}

	// leading guard: permissions cleared (default zero value already holds)
	if err := m.SetPermissions(base, guardSize, 0); err != nil {
		return 0, err
	}
	// header: internal-only marker, inaccessible to guest reads/writes
	binary.LittleEndian.PutUint64(m.memory[headerAddr:headerAddr+headerSize], size)
	m.markDirty(headerAddr, headerSize)
	for i := uint64(0); i < headerSize; i++ {
		m.perms[headerAddr+i] = byte(permAllocMeta)
	}
	// payload: writable, RAW (not yet readable until written)
	if err := m.SetPermissions(payloadAddr, size, PermWrite|PermRAW); err != nil {
		return 0, err
	}
	// trailing guard
	if err := m.SetPermissions(afterPayload, guardSize, 0); err != nil {
		return 0, err
	}

	m.heapPtr = end
	return payloadAddr, nil
}

// Free clears permissions across the payload (and its header), so any
// further access -- including a second Free of the same address --
// faults. The address is never reused: quarantine (spec.md §4.1).
func (m *Mmu) Free(addr uint64) error {
	if addr < headerSize || addr > uint64(len(m.memory)) {
		return newFault(KindInvalidFree, addr, 0)
	}
	headerAddr := addr - headerSize
	if Perm(m.perms[headerAddr]) != permAllocMeta {
		return newFault(KindInvalidFree, addr, 0)
	}
	size := binary.LittleEndian.Uint64(m.memory[headerAddr : headerAddr+headerSize])

	if err := m.SetPermissions(headerAddr, headerSize+size, 0); err != nil {
		return err
	}
	return nil
}

// GrowHeap extends the usable heap boundary to newEnd, the MMU half of
// the guest brk() syscall (spec.md §6 "brk grows the guest heap region
// within its allocated space"); the syscall body itself lives outside
// the core per spec.md §1.
func (m *Mmu) GrowHeap(newEnd uint64) error {
	if newEnd > uint64(len(m.memory)) {
		return newFault(KindOOB, newEnd, 0)
	}
	if newEnd > m.heapEnd {
		m.heapEnd = newEnd
	}
	return nil
}

// HeapPointer returns the current bump-allocation cursor.
func (m *Mmu) HeapPointer() uint64 { return m.heapPtr }

// SetHeapBounds initializes the heap region, called once after ELF
// segments are loaded and before any Allocate call.
func (m *Mmu) SetHeapBounds(start, end uint64) {
	m.heapPtr = start
	m.heapEnd = end
}
