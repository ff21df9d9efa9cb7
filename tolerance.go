// Package tilebench tolerance-based verification for floating-point comparisons
package tilebench

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the largest absolute difference still considered equal
	AbsTol float64
}

// DefaultTolerance returns the tolerance used to verify kernels
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{AbsTol: DefaultAbsTol}
}

// Mismatch describes the first element where two results disagree.
type Mismatch struct {
	Kernel string // registry name of the kernel under test, if known
	Index  int    // row-major linear index
	Ref    float64
	Other  float64
}

// Row and Col recover the (i, j) position of the mismatch.
func (m Mismatch) Row(n int) int { return m.Index / n }
func (m Mismatch) Col(n int) int { return m.Index % n }

// String formats the mismatch as "idx <i>, <ref> vs <other>"
func (m Mismatch) String() string {
	return fmt.Sprintf("idx %d, %e vs %e", m.Index, m.Ref, m.Other)
}

// Diagnostic is the line printed when verification fails.
func (m Mismatch) Diagnostic() string {
	return fmt.Sprintf("Different Answers (%s)! %s", DisplayName(m.Kernel), m.String())
}

// NearEqual reports whether |a-b| <= tol.AbsTol. NaN never compares equal.
func NearEqual(a, b float64, tol ToleranceConfig) bool {
	// Check if exactly equal (handles ±0 and matching infinities)
	if a == b {
		return true
	}
	// Written so that a NaN difference fails the test
	return math.Abs(a-b) <= tol.AbsTol
}

// Equivalent compares the first n*n elements of ref and other in
// row-major order and stops at the first element outside tolerance.
func Equivalent(ref, other []float64, n int, tol ToleranceConfig) (Mismatch, bool) {
	size := n * n
	shared := min(len(ref), len(other), size)
	for i := 0; i < shared; i++ {
		if !NearEqual(ref[i], other[i], tol) {
			return Mismatch{Index: i, Ref: ref[i], Other: other[i]}, false
		}
	}
	if shared == size {
		return Mismatch{Index: -1}, true
	}

	// The shorter buffer ends first; the absent side reads as NaN
	m := Mismatch{Index: shared, Ref: math.NaN(), Other: math.NaN()}
	if shared < len(ref) {
		m.Ref = ref[shared]
	}
	if shared < len(other) {
		m.Other = other[shared]
	}
	return m, false
}

// EquivalentMatrices is Equivalent for two matrices of the same order.
func EquivalentMatrices(ref, other *Matrix, tol ToleranceConfig) (Mismatch, bool) {
	if ref.N != other.N {
		return Mismatch{Index: 0, Ref: math.NaN(), Other: math.NaN()}, false
	}
	return Equivalent(ref.Data, other.Data, ref.N, tol)
}
