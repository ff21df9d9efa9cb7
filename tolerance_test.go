package tilebench

import (
	"math"
	"strings"
	"testing"
)

func TestNearEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		tol      ToleranceConfig
		expected bool
	}{
		{
			name:     "Exact_Equal",
			a:        1.0,
			b:        1.0,
			tol:      DefaultTolerance(),
			expected: true,
		},
		{
			name:     "Within_AbsTol",
			a:        1.0,
			b:        1.0 + 5e-11,
			tol:      DefaultTolerance(),
			expected: true,
		},
		{
			name:     "Outside_AbsTol",
			a:        1.0,
			b:        1.0 + 1e-9,
			tol:      DefaultTolerance(),
			expected: false,
		},
		{
			name:     "Both_Zero",
			a:        0.0,
			b:        math.Copysign(0, -1),
			tol:      DefaultTolerance(),
			expected: true,
		},
		{
			name:     "NaN_Never_Equal",
			a:        math.NaN(),
			b:        math.NaN(),
			tol:      DefaultTolerance(),
			expected: false,
		},
		{
			name:     "NaN_Against_Value",
			a:        1.0,
			b:        math.NaN(),
			tol:      ToleranceConfig{AbsTol: math.Inf(1)},
			expected: false,
		},
		{
			name:     "Both_PosInf",
			a:        math.Inf(1),
			b:        math.Inf(1),
			tol:      DefaultTolerance(),
			expected: true,
		},
		{
			name:     "Negative_Tolerance_Exact_Only",
			a:        1.0,
			b:        math.Nextafter(1.0, 2.0),
			tol:      ToleranceConfig{AbsTol: -1},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearEqual(tt.a, tt.b, tt.tol); got != tt.expected {
				t.Errorf("NearEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestEquivalentIdentical(t *testing.T) {
	a := RandomOrFail(t, 6, 11)
	b := &Matrix{N: 6, Data: append([]float64(nil), a.Data...)}

	m, ok := EquivalentMatrices(a, b, DefaultTolerance())
	if !ok {
		t.Fatalf("identical matrices reported different: %s", m)
	}
	if m.Index != -1 {
		t.Errorf("Index = %d, want -1 when equal", m.Index)
	}
}

func TestEquivalentReportsFirstMismatch(t *testing.T) {
	const n = 4
	ref := RandomOrFail(t, n, 12)
	other := &Matrix{N: n, Data: append([]float64(nil), ref.Data...)}
	other.Data[5] += 1e-5
	other.Data[9] += 1.0

	m, ok := Equivalent(ref.Data, other.Data, n, DefaultTolerance())
	if ok {
		t.Fatal("expected mismatch")
	}
	if m.Index != 5 {
		t.Errorf("Index = %d, want 5", m.Index)
	}
	if m.Ref != ref.Data[5] || m.Other != other.Data[5] {
		t.Errorf("values = %v vs %v, want %v vs %v", m.Ref, m.Other, ref.Data[5], other.Data[5])
	}
	if m.Row(n) != 1 || m.Col(n) != 1 {
		t.Errorf("position = (%d,%d), want (1,1)", m.Row(n), m.Col(n))
	}
	if !strings.HasPrefix(m.String(), "idx 5, ") {
		t.Errorf("String() = %q", m.String())
	}
}

func TestEquivalentShortBuffer(t *testing.T) {
	tests := []struct {
		name       string
		ref, other []float64
		n          int
		index      int
		ref0       float64 // NaN marks an absent value
		other0     float64
	}{
		{"short other", make([]float64, 16), make([]float64, 9), 4, 9, 0, math.NaN()},
		{"short ref", []float64{1, 2}, []float64{1, 2, 3, 4}, 2, 2, math.NaN(), 3},
		{"mismatch before tail", []float64{1, 2, 3, 4}, []float64{1, 9, 3}, 2, 1, 2, 9},
		{"tail only", []float64{1, 2, 3, 4}, []float64{1, 2, 3}, 2, 3, 4, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Equivalent(tt.ref, tt.other, tt.n, DefaultTolerance())
			if ok {
				t.Fatal("short buffer reported equivalent")
			}
			if m.Index != tt.index {
				t.Errorf("Index = %d, want %d", m.Index, tt.index)
			}
			if !sameValue(m.Ref, tt.ref0) || !sameValue(m.Other, tt.other0) {
				t.Errorf("values = %v vs %v, want %v vs %v", m.Ref, m.Other, tt.ref0, tt.other0)
			}
		})
	}
}

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestMismatchDiagnostic(t *testing.T) {
	m := Mismatch{Kernel: "blocked", Index: 3, Ref: 2, Other: 2.5}
	want := "Different Answers (Blocked)! idx 3, 2.000000e+00 vs 2.500000e+00"
	if got := m.Diagnostic(); got != want {
		t.Errorf("Diagnostic() = %q, want %q", got, want)
	}
}
