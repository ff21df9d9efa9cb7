package tilebench

import (
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestNaiveDeterminism(t *testing.T) {
	for _, n := range []int{1, 5, 16, 33} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a, b := SeededOrFail(t, n)
			first := MultiplyOrFail(t, NaiveKernel(), a, b)
			second := MultiplyOrFail(t, NaiveKernel(), a, b)
			AssertBitIdentical(t, first, second)
		})
	}
}

func TestSeededProductClosedForm(t *testing.T) {
	// B is all ones, so C[i,j] = sum_k A[i,k] = n/(i+1)
	const n = 4
	a, b := SeededOrFail(t, n)
	kernels := []Kernel{NaiveKernel(), UnrolledKernel(), BlockedKernel(2), BlockedKernel(4), RecursiveKernel(2)}

	for _, k := range kernels {
		t.Run(fmt.Sprintf("%s/step=%d", k.Name, k.Step), func(t *testing.T) {
			c := MultiplyOrFail(t, k, a, b)
			for i := 0; i < n; i++ {
				want := float64(n) / float64(i+1)
				for j := 0; j < n; j++ {
					if got := c.At(i, j); math.Abs(got-want) > DefaultAbsTol {
						t.Errorf("C[%d,%d] = %v, want %v", i, j, got, want)
					}
				}
			}
		})
	}
}

func TestUnrolledBitIdentical(t *testing.T) {
	for _, n := range []int{4, 8, 12, 16, 36, 64} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := RandomOrFail(t, n, 1)
			b := RandomOrFail(t, n, 2)
			want := MultiplyOrFail(t, NaiveKernel(), a, b)
			got := MultiplyOrFail(t, UnrolledKernel(), a, b)
			AssertBitIdentical(t, want, got)

			sa, sb := SeededOrFail(t, n)
			AssertBitIdentical(t,
				MultiplyOrFail(t, NaiveKernel(), sa, sb),
				MultiplyOrFail(t, UnrolledKernel(), sa, sb))
		})
	}
}

func TestBlockedMatchesNaive(t *testing.T) {
	tol := DefaultTolerance()
	for _, n := range []int{1, 6, 8, 12, 24, 48} {
		a := RandomOrFail(t, n, 3)
		b := RandomOrFail(t, n, 4)
		want := MultiplyOrFail(t, NaiveKernel(), a, b)

		for step := 1; step <= n; step++ {
			if n%step != 0 {
				continue
			}
			t.Run(fmt.Sprintf("n=%d/step=%d", n, step), func(t *testing.T) {
				got := MultiplyOrFail(t, BlockedKernel(step), a, b)
				AssertEquivalent(t, want, got, tol)
			})
		}
	}
}

func TestBlockedEightByEight(t *testing.T) {
	a, b := SeededOrFail(t, 8)
	want := MultiplyOrFail(t, NaiveKernel(), a, b)
	for _, step := range []int{2, 4} {
		got := MultiplyOrFail(t, BlockedKernel(step), a, b)
		AssertEquivalent(t, want, got, DefaultTolerance())
	}
}

func TestBlockedDegenerateTile(t *testing.T) {
	// step == n is a single tile covering the whole product
	for _, n := range []int{3, 8, 20} {
		a := RandomOrFail(t, n, 5)
		b := RandomOrFail(t, n, 6)
		want := MultiplyOrFail(t, NaiveKernel(), a, b)
		got := MultiplyOrFail(t, BlockedKernel(n), a, b)
		AssertEquivalent(t, want, got, DefaultTolerance())
	}
}

func TestRecursiveMatchesNaive(t *testing.T) {
	tests := []struct {
		n, step int
	}{
		{8, 2},
		{8, 3}, // ragged leaves
		{7, 2},
		{33, 4},
		{64, 16},
		{16, 64}, // a single leaf
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/step=%d", tt.n, tt.step), func(t *testing.T) {
			a := RandomOrFail(t, tt.n, 7)
			b := RandomOrFail(t, tt.n, 8)
			want := MultiplyOrFail(t, NaiveKernel(), a, b)
			got := MultiplyOrFail(t, RecursiveKernel(tt.step), a, b)
			AssertEquivalent(t, want, got, DefaultTolerance())
		})
	}
}

func TestKernelsZeroOutputEachCall(t *testing.T) {
	const n = 8
	a := RandomOrFail(t, n, 9)
	b := RandomOrFail(t, n, 10)
	kernels := []Kernel{NaiveKernel(), UnrolledKernel(), BlockedKernel(4), RecursiveKernel(4)}

	for _, k := range kernels {
		t.Run(k.Name, func(t *testing.T) {
			c, _ := NewMatrix(n)
			for i := range c.Data {
				c.Data[i] = 42
			}
			k.Run(n, a.Data, b.Data, c.Data, 1)
			first := &Matrix{N: n, Data: append([]float64(nil), c.Data...)}

			k.Run(n, a.Data, b.Data, c.Data, 1)
			AssertBitIdentical(t, first, c)

			// Several repetitions leave the same single product behind
			k.Run(n, a.Data, b.Data, c.Data, 3)
			AssertBitIdentical(t, first, c)
		})
	}
}

func TestPreconditions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unrolled n=8", ValidateUnrolled(8), nil},
		{"unrolled n=6", ValidateUnrolled(6), ErrUnrollRemainder},
		{"unrolled n=0", ValidateUnrolled(0), ErrNonPositiveDimension},
		{"tile 8/2", ValidateTile(8, 2), nil},
		{"tile 8/8", ValidateTile(8, 8), nil},
		{"tile 8/3", ValidateTile(8, 3), ErrTileRemainder},
		{"tile 8/0", ValidateTile(8, 0), ErrNonPositiveStep},
		{"tile 8/16", ValidateTile(8, 16), ErrTileRemainder},
		{"recursive 8/3", ValidateRecursive(8, 3), nil},
		{"recursive 8/-1", ValidateRecursive(8, -1), ErrNonPositiveStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err != tt.want {
				t.Errorf("got %v, want %v", tt.err, tt.want)
			}
			if tt.want != nil && !IsPreconditionError(tt.err) {
				t.Errorf("%v is not a precondition error", tt.err)
			}
		})
	}
}

// Non-dividing tiles and unroll remainders are outside the kernels'
// contract; they must refuse to run rather than compute garbage.
func TestKernelsRejectOutOfContract(t *testing.T) {
	a, b := SeededOrFail(t, 8)
	c, _ := NewMatrix(8)
	a6, b6 := SeededOrFail(t, 6)
	c6, _ := NewMatrix(6)

	tests := []struct {
		name string
		run  func()
		want error
	}{
		{"blocked step=3", func() { MultiplyBlocked(3, 8, a.Data, b.Data, c.Data, 1) }, ErrTileRemainder},
		{"unrolled n=6", func() { MultiplyUnrolled(6, a6.Data, b6.Data, c6.Data, 1) }, ErrUnrollRemainder},
		{"naive n=0", func() { MultiplyNaive(0, a.Data, b.Data, c.Data, 1) }, ErrNonPositiveDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				if err, ok := r.(error); !ok || err != tt.want {
					t.Errorf("panic = %v, want %v", r, tt.want)
				}
			}()
			tt.run()
		})
	}
}

func TestKernelsRejectAliasing(t *testing.T) {
	a, b := SeededOrFail(t, 4)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !IsPreconditionError(err) {
			t.Errorf("panic = %v, want precondition error", r)
		}
	}()
	MultiplyNaive(4, a.Data, b.Data, a.Data, 1)
}

func TestKernelsRejectPartialOverlap(t *testing.T) {
	buf := make([]float64, 5)
	for i := range buf {
		buf[i] = 1
	}
	ones := []float64{1, 1, 1, 1}

	tests := []struct {
		name    string
		a, b, c []float64
	}{
		{"C shifted into A", buf[0:4], ones, buf[1:5]},
		{"A shifted into C", buf[1:5], ones, buf[0:4]},
		{"C shifted into B", ones, buf[1:5], buf[0:4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !IsPreconditionError(err) {
					t.Errorf("panic = %v, want precondition error", r)
				}
			}()
			MultiplyNaive(2, tt.a, tt.b, tt.c, 1)
		})
	}
}

func TestOverlaps(t *testing.T) {
	buf := make([]float64, 8)
	tests := []struct {
		name string
		x, y []float64
		want bool
	}{
		{"same", buf[0:4], buf[0:4], true},
		{"partial", buf[0:4], buf[3:7], true},
		{"adjacent", buf[0:4], buf[4:8], false},
		{"separate", buf[0:4], make([]float64, 4), false},
		{"empty", buf[0:0], buf[0:4], false},
	}
	for _, tt := range tests {
		if got := overlaps(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: overlaps = %v, want %v", tt.name, got, tt.want)
		}
		if got := overlaps(tt.y, tt.x); got != tt.want {
			t.Errorf("%s (swapped): overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Inputs may share storage with each other; only C must be separate
func TestKernelsAllowSharedInputs(t *testing.T) {
	a, _ := SeededOrFail(t, 4)
	c, _ := NewMatrix(4)
	MultiplyNaive(4, a.Data, a.Data, c.Data, 1)
}

func TestLookupKernel(t *testing.T) {
	for _, name := range []string{"naive", "Unrolled", " blocked ", "RECURSIVE"} {
		k, err := LookupKernel(name, 4)
		if err != nil {
			t.Errorf("LookupKernel(%q) failed: %v", name, err)
			continue
		}
		if k.Run == nil {
			t.Errorf("LookupKernel(%q) returned no implementation", name)
		}
	}

	if _, err := LookupKernel("strassen", 4); !IsUsageError(err) {
		t.Errorf("unknown kernel: got %v, want usage error", err)
	}
}

func TestSelectKernels(t *testing.T) {
	ks, err := SelectKernels([]string{"naive", "blocked", "naive", "recursive"}, 4)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, k := range ks {
		got = append(got, k.Name)
	}
	if fmt.Sprint(got) != "[naive blocked recursive]" {
		t.Errorf("SelectKernels = %v", got)
	}
	if ks[1].Step != 4 {
		t.Errorf("blocked step = %d, want 4", ks[1].Step)
	}
}

func TestDefaultKernelNames(t *testing.T) {
	if got := fmt.Sprint(DefaultKernelNames(0)); got != "[naive unrolled]" {
		t.Errorf("DefaultKernelNames(0) = %s", got)
	}
	if got := fmt.Sprint(DefaultKernelNames(4)); got != "[naive blocked recursive]" {
		t.Errorf("DefaultKernelNames(4) = %s", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"naive":     "Naive",
		"unrolled":  "Unrolled",
		"blocked":   "Blocked",
		"recursive": "Recursive",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayNameConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := DisplayName("recursive"); got != "Recursive" {
					t.Errorf("DisplayName = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSeedOperands(t *testing.T) {
	a, b := SeededOrFail(t, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if got, want := a.At(i, j), 1/float64(i+1); got != want {
				t.Errorf("A[%d,%d] = %v, want %v", i, j, got, want)
			}
			if got := b.At(i, j); got != 1 {
				t.Errorf("B[%d,%d] = %v, want 1", i, j, got)
			}
		}
	}

	if _, _, err := SeedOperands(0); err != ErrNonPositiveDimension {
		t.Errorf("SeedOperands(0) error = %v", err)
	}
}
