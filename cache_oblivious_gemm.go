package tilebench

// RecursiveGEMM implements a cache-oblivious matrix multiplication
// using recursive subdivision. Each call halves the largest of the three
// extents (rows of C, the inner dimension, columns of C) until all of them
// are at most baseSize, then accumulates the leaf with the same inner-tile
// loop as MultiplyBlocked.
//
// Unlike the blocked kernel, leaves may be ragged, so baseSize need not
// divide n.
type RecursiveGEMM struct {
	baseSize int
}

// NewRecursiveGEMM creates a recursive multiply with the given leaf edge.
func NewRecursiveGEMM(baseSize int) *RecursiveGEMM {
	if baseSize <= 0 {
		baseSize = DefaultTileSize
	}
	return &RecursiveGEMM{baseSize: baseSize}
}

// BaseSize returns the leaf edge.
func (r *RecursiveGEMM) BaseSize() int {
	return r.baseSize
}

// Multiply is a KernelFunc.
func (r *RecursiveGEMM) Multiply(n int, a, b, c []float64, repetitions int) {
	mustOperands("Recursive", n, a, b, c)
	for iter := 0; iter < repetitions; iter++ {
		clear(c[:n*n])
		r.recursiveMultiply(n, 0, 0, 0, n, n, n, a, b, c)
	}
}

// recursiveMultiply performs the recursive subdivision
func (r *RecursiveGEMM) recursiveMultiply(n, i0, j0, k0, rows, inner, cols int, a, b, c []float64) {
	if rows <= r.baseSize && inner <= r.baseSize && cols <= r.baseSize {
		accumulateBlock(n, i0, j0, k0, rows, inner, cols, a, b, c)
		return
	}

	// Split the largest dimension to maintain balance
	switch {
	case rows >= max(inner, cols):
		// Split A and C horizontally
		mid := rows / 2
		r.recursiveMultiply(n, i0, j0, k0, mid, inner, cols, a, b, c)
		r.recursiveMultiply(n, i0+mid, j0, k0, rows-mid, inner, cols, a, b, c)

	case cols >= max(rows, inner):
		// Split B and C vertically
		mid := cols / 2
		r.recursiveMultiply(n, i0, j0, k0, rows, inner, mid, a, b, c)
		r.recursiveMultiply(n, i0, j0, k0+mid, rows, inner, cols-mid, a, b, c)

	default:
		// Split the inner dimension; both halves accumulate into the same C
		mid := inner / 2
		r.recursiveMultiply(n, i0, j0, k0, rows, mid, cols, a, b, c)
		r.recursiveMultiply(n, i0, j0+mid, k0, rows, inner-mid, cols, a, b, c)
	}
}
