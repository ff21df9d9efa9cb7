package tilebench

import (
	"fmt"
	"strings"
)

// Matrix is an n×n grid of float64 stored row-major in one contiguous
// slice; element (i, j) lives at Data[i*N+j].
type Matrix struct {
	N    int
	Data []float64
}

// NewMatrix allocates a zeroed n×n matrix.
func NewMatrix(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, ErrNonPositiveDimension
	}
	return &Matrix{N: n, Data: make([]float64, n*n)}, nil
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

// Set stores v at element (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.N+j] = v
}

// String prints the matrix one row per line; intended for small n.
func (m *Matrix) String() string {
	var sb strings.Builder
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", m.At(i, j))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// SeedOperands returns the deterministic benchmark inputs
// A[i,j] = 1/(i+1) and B[i,j] = 1.
func SeedOperands(n int) (a, b *Matrix, err error) {
	if a, err = NewMatrix(n); err != nil {
		return nil, nil, err
	}
	if b, err = NewMatrix(n); err != nil {
		return nil, nil, err
	}
	for i := 0; i < n; i++ {
		v := 1.0 / float64(i+1)
		for j := 0; j < n; j++ {
			a.Set(i, j, v)
			b.Set(i, j, 1.0)
		}
	}
	return a, b, nil
}
