package mmu

// Perm is a single guest byte's permission bitmask. The bit layout is an
// implementation choice (spec.md leaves it open); READ/WRITE/EXEC follow
// the conventional ELF segment flags and RAW is sfuzz's own
// read-after-write marker.
type Perm byte

const (
	PermRead  Perm = 1 << 0
	PermWrite Perm = 1 << 1
	PermExec  Perm = 1 << 2
	// PermRAW marks a byte as writable-but-not-yet-readable. A write to a
	// RAW byte upgrades it to also carry PermRead (§3, §8 RAW invariant).
	PermRAW Perm = 1 << 3

	// permAllocMeta is set only on the 8-byte size header sfuzz's bump
	// allocator writes immediately before a live allocation's payload.
	// It is never returned to callers through SetPermissions and is used
	// purely to detect invalid/double frees, following the inline
	// size-field scheme in original_source/src/mmu.rs's Mmu::allocate.
	permAllocMeta Perm = 1 << 4

	// PermRW and PermRWX are the two permission sets most callers reach for.
	PermRW  = PermRead | PermWrite
	PermRWX = PermRead | PermWrite | PermExec
)

func (p Perm) Has(bits Perm) bool { return p&bits == bits }

func (p Perm) String() string {
	s := ""
	if p.Has(PermRead) {
		s += "R"
	}
	if p.Has(PermWrite) {
		s += "W"
	}
	if p.Has(PermExec) {
		s += "X"
	}
	if p.Has(PermRAW) {
		s += "a"
	}
	if s == "" {
		return "-"
	}
	return s
}
