package tilebench

import (
	"fmt"
	"math"
)

// NumericalParity summarizes how far one result drifts from another
// across every element, unlike Equivalent which stops at the first
// failure. It is reported next to timings so accumulation-order effects
// stay visible even when a kernel passes verification.
type NumericalParity struct {
	MaxAbsError  float64 `json:"max_abs_error"`
	MaxULPError  uint64  `json:"max_ulp_error"`
	NumDiffering int     `json:"num_differing"`
	TotalItems   int     `json:"total_items"`
}

// CompareFloat64 compares two values and updates error statistics
func (np *NumericalParity) CompareFloat64(expected, actual float64) {
	np.TotalItems++
	if math.Float64bits(expected) == math.Float64bits(actual) {
		return
	}
	np.NumDiffering++

	absErr := math.Abs(expected - actual)
	if absErr > np.MaxAbsError || math.IsNaN(absErr) {
		np.MaxAbsError = absErr
	}

	ulpErr := ULPDiffFloat64(expected, actual)
	if ulpErr > np.MaxULPError {
		np.MaxULPError = ulpErr
	}
}

// CompareSlices compares two slices of float64
func (np *NumericalParity) CompareSlices(expected, actual []float64) {
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		np.CompareFloat64(expected[i], actual[i])
	}
}

// BitIdentical reports whether every compared element matched exactly.
func (np NumericalParity) BitIdentical() bool {
	return np.NumDiffering == 0
}

// String formats the statistics for display
func (np NumericalParity) String() string {
	if np.BitIdentical() {
		return fmt.Sprintf("bit-identical (%d values)", np.TotalItems)
	}
	return fmt.Sprintf("%d/%d values differ, max abs error %e, max ULP %d",
		np.NumDiffering, np.TotalItems, np.MaxAbsError, np.MaxULPError)
}

// ULPDiffFloat64 computes the ULP (Units in Last Place) distance between
// a and b. Values of opposite sign are measured through zero; any NaN
// yields math.MaxUint64.
func ULPDiffFloat64(a, b float64) uint64 {
	if a == b {
		return 0
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.MaxUint64
	}
	ia, ib := orderedBits(a), orderedBits(b)
	if ia > ib {
		return uint64(ia) - uint64(ib)
	}
	return uint64(ib) - uint64(ia)
}

// orderedBits maps a float64 onto an int64 whose ordering matches the
// numeric ordering of the floats, with -0 and +0 adjacent at zero.
func orderedBits(x float64) int64 {
	i := int64(math.Float64bits(x))
	if i < 0 {
		i = math.MinInt64 - i
	}
	return i
}
