package tilebench

import (
	"math/rand"
	"testing"
)

// SeededOrFail returns the benchmark operands and fails the test if
// allocation is rejected
func SeededOrFail(t testing.TB, n int) (a, b *Matrix) {
	t.Helper()
	a, b, err := SeedOperands(n)
	if err != nil {
		t.Fatalf("SeedOperands(%d) failed: %v", n, err)
	}
	return a, b
}

// RandomOrFail returns an n×n matrix of values in [0, 1) from a fixed seed
func RandomOrFail(t testing.TB, n int, seed int64) *Matrix {
	t.Helper()
	m, err := NewMatrix(n)
	if err != nil {
		t.Fatalf("NewMatrix(%d) failed: %v", n, err)
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = rng.Float64()
	}
	return m
}

// MultiplyOrFail runs kernel k once into a fresh C and returns it
func MultiplyOrFail(t testing.TB, k Kernel, a, b *Matrix) *Matrix {
	t.Helper()
	if k.Validate != nil {
		if err := k.Validate(a.N); err != nil {
			t.Fatalf("%s cannot run at n=%d: %v", k.Name, a.N, err)
		}
	}
	c, err := NewMatrix(a.N)
	if err != nil {
		t.Fatalf("NewMatrix(%d) failed: %v", a.N, err)
	}
	k.Run(a.N, a.Data, b.Data, c.Data, 1)
	return c
}

// AssertBitIdentical fails the test unless got matches want exactly
func AssertBitIdentical(t testing.TB, want, got *Matrix) {
	t.Helper()
	var np NumericalParity
	np.CompareSlices(want.Data, got.Data)
	if !np.BitIdentical() {
		t.Errorf("results not bit-identical: %s", np)
	}
}

// AssertEquivalent fails the test if got differs from want beyond tol
func AssertEquivalent(t testing.TB, want, got *Matrix, tol ToleranceConfig) {
	t.Helper()
	if m, ok := EquivalentMatrices(want, got, tol); !ok {
		t.Errorf("results differ beyond %g: %s", tol.AbsTol, m)
	}
}
