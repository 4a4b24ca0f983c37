// Package coverage implements the shared edge/block bytemap and the
// compare-coverage (CMPCOV) map described in spec.md §3 and §4.5. Both
// maps are written from many worker threads concurrently; per spec.md
// §5, only the 0->1 transition of a slot matters, so slots are updated
// with a CAS on their containing 32-bit word rather than a full mutex.
package coverage

import (
	"sync/atomic"
	"unsafe"

	"github.com/seal9055/sfuzz/internal/config"
)

// Map is a fixed-size coverage bytemap with one-hit semantics: once a
// slot transitions from zero, RecordIfNew never reports it as new again
// (spec.md §3 "one-hit semantics").
type Map struct {
	bytes []byte
	mask  uint64
	mode  config.CoverageMode
}

// New allocates a coverage map of size bytes (rounded up to a multiple
// of 4 so every slot lies in a CAS-able 32-bit word), indexed with mode.
func New(size int, mode config.CoverageMode) *Map {
	if size <= 0 {
		size = config.DefaultCoverageMapSize
	}
	padded := (size + 3) &^ 3
	return &Map{
		bytes: make([]byte, padded),
		mask:  uint64(powerOfTwoFloor(padded)) - 1,
		mode:  mode,
	}
}

func powerOfTwoFloor(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

// xorshift64 is the avalanche mix spec.md §4.5 specifies for edge hashing.
func xorshift64(x uint64) uint64 {
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}

// Index computes the coverage-map slot for a block-entry transition from
// from to to, per spec.md §4.5: edge mode hashes both PCs, block mode
// uses only the low bits of the destination address.
func (m *Map) Index(from, to uint64) uint64 {
	switch m.mode {
	case config.CoverageEdge:
		return (xorshift64(from) ^ to) & m.mask
	case config.CoverageBlock:
		return to & m.mask
	default:
		return 0
	}
}

// Mode reports the configured coverage mode.
func (m *Map) Mode() config.CoverageMode { return m.mode }

// Len returns the map size in bytes.
func (m *Map) Len() int { return len(m.bytes) }

// Mask returns the index mask Index applies, exposed so the JIT can
// inline the identical computation instead of re-deriving it from Len
// (which would silently diverge if Len were ever not a power of two).
func (m *Map) Mask() uint64 { return m.mask }

// Bytes exposes the raw backing array for read-only inspection by the
// orchestrator (spec.md §4.7 "opaque references ... so the orchestrator
// can read them without locks").
func (m *Map) Bytes() []byte { return m.bytes }

// Base returns the map's base pointer, materialized by the JIT into a
// reserved host register (spec.md §4.3).
func (m *Map) Base() *byte { return &m.bytes[0] }

// RecordIfNew sets slot idx to 1 and reports whether this call caused
// the 0->1 transition (spec.md §5: "exact count of hits is not
// required, only the monotone transition 0->1").
func (m *Map) RecordIfNew(idx uint64) bool {
	if idx >= uint64(len(m.bytes)) {
		return false
	}
	wordAddr := (*uint32)(unsafe.Pointer(&m.bytes[idx&^3]))
	shift := (idx & 3) * 8
	for {
		word := atomic.LoadUint32(wordAddr)
		if (word>>shift)&0xff != 0 {
			return false
		}
		newWord := word | (1 << shift)
		if atomic.CompareAndSwapUint32(wordAddr, word, newWord) {
			return true
		}
	}
}

// IsSet reports whether slot idx has ever been recorded, an acquire load
// per spec.md §5.
func (m *Map) IsSet(idx uint64) bool {
	if idx >= uint64(len(m.bytes)) {
		return false
	}
	wordAddr := (*uint32)(unsafe.Pointer(&m.bytes[idx&^3]))
	shift := (idx & 3) * 8
	return (atomic.LoadUint32(wordAddr)>>shift)&0xff != 0
}

// Count returns the number of nonzero slots, used for statistics.
func (m *Map) Count() int {
	n := 0
	for _, b := range m.bytes {
		if b != 0 {
			n++
		}
	}
	return n
}

// Reset clears every slot, used after seed calibration so the warm-up
// executions of the initial corpus don't rob the real fuzzing loop of
// its "first to find this edge" credit (original_source/lib.rs calls
// corpus.reset_coverage() immediately after calibrate_seeds).
func (m *Map) Reset() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}
