// Package tilebench configuration constants
package tilebench

// Kernel shape parameters
const (
	// Unroll factor for the inner k loop of the unrolled kernel
	UnrollFactor = 4

	// Tile edge used when none is given (fits three tiles in a 32KB L1)
	DefaultTileSize = 32
)

// Measurement parameters
const (
	// Total element accesses each timed phase aims for; repetitions are
	// derived as AccessBudget / n^3, floored at 1
	AccessBudget int64 = 1000000000

	// Absolute tolerance for cross-kernel verification
	DefaultAbsTol = 1e-10

	// Bytes per matrix element
	ElementSize = 8
)

// Cache geometry used by the cache-line probe (in bytes)
const (
	// Cache line size
	CacheLineSize = 128

	// L1 data cache size
	L1CacheSize = 64 * 1024 // 64KB

	// L2 cache size
	L2CacheSize = 4 * 1024 * 1024 // 4MB

	// L3 cache size (shared)
	L3CacheSize = 8 * 1024 * 1024 // 8MB

	// Accesses performed per probe phase
	ProbeAccesses int64 = 805306368
)
