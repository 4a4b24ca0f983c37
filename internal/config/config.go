// Package config holds the tunable defaults for a fuzzing run. Values
// here mirror the constants original_source/src/config.rs hard-coded
// (coverage method, snapshot address, thread count) but are overridable
// at runtime through CLI flags rather than compiled in.
package config

// CoverageMode selects how the JIT records control-flow coverage.
type CoverageMode int

const (
	// CoverageNone disables coverage instrumentation entirely.
	CoverageNone CoverageMode = iota
	// CoverageBlock records a hit per basic block entry.
	CoverageBlock
	// CoverageEdge records a hit per (from, to) block-entry pair.
	CoverageEdge
)

func (m CoverageMode) String() string {
	switch m {
	case CoverageNone:
		return "none"
	case CoverageBlock:
		return "block"
	case CoverageEdge:
		return "edge"
	default:
		return "unknown"
	}
}

const (
	// DefaultGuestMemSize is the default size of a fuzzed binary's flat address space (64 MiB).
	DefaultGuestMemSize = 64 * 1024 * 1024

	// DefaultCoverageMapSize is the default edge/block bytemap size (2^24 bytes), chosen per
	// spec.md §9 to keep hash collisions acceptably rare for typical binaries.
	DefaultCoverageMapSize = 1 << 24

	// DefaultCodeCacheSize is the size of the shared host-code region.
	DefaultCodeCacheSize = 128 * 1024 * 1024

	// DefaultThreadCount is the default number of parallel fuzzing workers.
	DefaultThreadCount = 1

	// DefaultTimeoutMultiplier is applied to the average calibration instruction count to
	// derive the per-case instruction budget, per original_source/src/lib.rs calibrate_seeds.
	DefaultTimeoutMultiplier = 5
)

// Config is the full set of knobs a fuzzing run is configured with.
type Config struct {
	// InDir is the seed corpus directory (-i).
	InDir string
	// OutDir is where crashes/ and queue/ are written (-o).
	OutDir string
	// SnapshotPC, if non-zero, is the guest PC at which the master snapshot is taken (-s).
	SnapshotPC uint64
	// InstrTimeout overrides the calibrated instruction budget when non-zero (-t).
	InstrTimeout uint64
	// DictPath is an optional token dictionary fed to the mutator (-d).
	DictPath string
	// Threads is the number of parallel worker threads (-j).
	Threads int
	// GuestMemSize is the size of each emulator's flat guest address space.
	GuestMemSize uint64
	// CoverageMapSize is the size, in bytes, of the shared coverage bytemap.
	CoverageMapSize int
	// CoverageMode selects block or edge coverage (§4.5).
	CoverageMode CoverageMode
	// CmpCov enables compare-coverage instrumentation (on by default per spec.md §4.5).
	CmpCov bool
	// CallStackCoverage opts into call-stack-hash mixing into the edge index (§4.5), off by
	// default because it can inflate the coverage space dramatically.
	CallStackCoverage bool
	// CodeCacheSize is the size of the shared host-code region.
	CodeCacheSize int
	// TargetPath is the RV64I ELF binary under test.
	TargetPath string
	// TargetArgs are argv entries passed through to the target.
	TargetArgs []string
}

// Default returns a Config populated with the defaults above.
func Default() Config {
	return Config{
		Threads:         DefaultThreadCount,
		GuestMemSize:    DefaultGuestMemSize,
		CoverageMapSize: DefaultCoverageMapSize,
		CoverageMode:    CoverageBlock,
		CmpCov:          true,
		CodeCacheSize:   DefaultCodeCacheSize,
	}
}
