package tilebench

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kernel names accepted by LookupKernel.
const (
	KernelNaive     = "naive"
	KernelUnrolled  = "unrolled"
	KernelBlocked   = "blocked"
	KernelRecursive = "recursive"
)

// KernelFunc computes C = A*B for n×n row-major buffers, repeating the
// whole multiplication repetitions times. C is zeroed at the start of every
// repetition, so the result never depends on what C held before.
//
// A, B and C must be distinct allocations; kernels never retain them.
type KernelFunc func(n int, a, b, c []float64, repetitions int)

// Kernel is one variant of the multiplication under study.
type Kernel struct {
	// Name is the lowercase registry key
	Name string

	// Step is the tile edge for tiled variants, 0 otherwise
	Step int

	Run KernelFunc

	// Validate reports whether the kernel can run at dimension n
	Validate func(n int) error

	// BitExact is set when the kernel sums in exactly the naive order
	BitExact bool
}

// DisplayName is the capitalized kernel name used in reports.
func (k Kernel) DisplayName() string {
	return DisplayName(k.Name)
}

var (
	// A Caser carries transform state, so calls are serialized
	titleMu sync.Mutex
	title   = cases.Title(language.English)
)

// DisplayName capitalizes a kernel registry name ("blocked" -> "Blocked").
// It is safe for concurrent use.
func DisplayName(name string) string {
	titleMu.Lock()
	defer titleMu.Unlock()
	return title.String(name)
}

// NaiveKernel is the reference multiply; every other kernel is checked
// against it.
func NaiveKernel() Kernel {
	return Kernel{
		Name:     KernelNaive,
		Run:      MultiplyNaive,
		Validate: validateDimension,
		BitExact: true,
	}
}

// UnrolledKernel unrolls the inner loop by UnrollFactor.
func UnrolledKernel() Kernel {
	return Kernel{
		Name:     KernelUnrolled,
		Run:      MultiplyUnrolled,
		Validate: ValidateUnrolled,
		BitExact: true,
	}
}

// BlockedKernel tiles the iteration space into step³ cubes.
func BlockedKernel(step int) Kernel {
	return Kernel{
		Name: KernelBlocked,
		Step: step,
		Run: func(n int, a, b, c []float64, repetitions int) {
			MultiplyBlocked(step, n, a, b, c, repetitions)
		},
		Validate: func(n int) error { return ValidateTile(n, step) },
	}
}

// RecursiveKernel halves the problem until every extent is at most step.
func RecursiveKernel(step int) Kernel {
	r := NewRecursiveGEMM(step)
	return Kernel{
		Name:     KernelRecursive,
		Step:     step,
		Run:      r.Multiply,
		Validate: func(n int) error { return ValidateRecursive(n, step) },
	}
}

// LookupKernel resolves a registry name. step is ignored by untiled kernels.
func LookupKernel(name string, step int) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case KernelNaive:
		return NaiveKernel(), nil
	case KernelUnrolled:
		return UnrolledKernel(), nil
	case KernelBlocked:
		return BlockedKernel(step), nil
	case KernelRecursive:
		return RecursiveKernel(step), nil
	}
	return Kernel{}, NewUsageError("LookupKernel", fmt.Sprintf("unknown kernel %q", name))
}

// DefaultKernelNames picks the variants for a command line: "<n>" times
// naive and unrolled, "<n> <step>" times naive and the tiled variants.
func DefaultKernelNames(step int) []string {
	if step > 0 {
		return []string{KernelNaive, KernelBlocked, KernelRecursive}
	}
	return []string{KernelNaive, KernelUnrolled}
}

// SelectKernels resolves a list of registry names, dropping duplicates.
func SelectKernels(names []string, step int) ([]Kernel, error) {
	seen := make(map[string]bool, len(names))
	kernels := make([]Kernel, 0, len(names))
	for _, name := range names {
		k, err := LookupKernel(name, step)
		if err != nil {
			return nil, err
		}
		if seen[k.Name] {
			continue
		}
		seen[k.Name] = true
		kernels = append(kernels, k)
	}
	return kernels, nil
}

func validateDimension(n int) error {
	if n <= 0 {
		return ErrNonPositiveDimension
	}
	return nil
}

// ValidateUnrolled checks the unrolled kernel's precondition. There is no
// remainder loop, so n must be a multiple of UnrollFactor.
func ValidateUnrolled(n int) error {
	if err := validateDimension(n); err != nil {
		return err
	}
	if n%UnrollFactor != 0 {
		return ErrUnrollRemainder
	}
	return nil
}

// ValidateTile checks the blocked kernel's precondition: step must evenly
// divide n. There is no remainder handling for partial tiles.
func ValidateTile(n, step int) error {
	if err := validateDimension(n); err != nil {
		return err
	}
	if step <= 0 {
		return ErrNonPositiveStep
	}
	if n%step != 0 {
		return ErrTileRemainder
	}
	return nil
}

// ValidateRecursive checks the recursive kernel's precondition. Leaves may
// be ragged, so any positive step works.
func ValidateRecursive(n, step int) error {
	if err := validateDimension(n); err != nil {
		return err
	}
	if step <= 0 {
		return ErrNonPositiveStep
	}
	return nil
}

// mustOperands panics when the buffers cannot hold an n×n problem or
// when C shares storage with an input.
func mustOperands(op string, n int, a, b, c []float64) {
	if n <= 0 {
		panic(ErrNonPositiveDimension)
	}
	size := n * n
	if len(a) < size || len(b) < size || len(c) < size {
		panic(NewPreconditionError(op, fmt.Sprintf("buffers shorter than %d×%d", n, n)))
	}
	if overlaps(c[:size], a[:size]) || overlaps(c[:size], b[:size]) {
		panic(NewPreconditionError(op, "C must not alias A or B"))
	}
}

// overlaps reports whether x and y share any backing element.
func overlaps(x, y []float64) bool {
	if len(x) == 0 || len(y) == 0 {
		return false
	}
	x0 := uintptr(unsafe.Pointer(unsafe.SliceData(x)))
	y0 := uintptr(unsafe.Pointer(unsafe.SliceData(y)))
	x1 := x0 + uintptr(len(x))*ElementSize
	y1 := y0 + uintptr(len(y))*ElementSize
	return x0 < y1 && y0 < x1
}

// MultiplyNaive is the reference i→j→k multiply. A[i,j] is held in a
// scalar while the k loop walks rows of B and C contiguously.
func MultiplyNaive(n int, a, b, c []float64, repetitions int) {
	mustOperands("Naive", n, a, b, c)
	for iter := 0; iter < repetitions; iter++ {
		for i := 0; i < n; i++ {
			cRow := c[i*n : i*n+n]
			clear(cRow)
			for j := 0; j < n; j++ {
				val := a[i*n+j]
				bRow := b[j*n : j*n+n]
				for k := range cRow {
					cRow[k] += val * bRow[k]
				}
			}
		}
	}
}

// MultiplyUnrolled is MultiplyNaive with the k loop unrolled by four.
// Each C element receives its products in the same order, so the result
// is bit-identical to the naive kernel.
func MultiplyUnrolled(n int, a, b, c []float64, repetitions int) {
	mustOperands("Unrolled", n, a, b, c)
	if err := ValidateUnrolled(n); err != nil {
		panic(err)
	}
	for iter := 0; iter < repetitions; iter++ {
		for i := 0; i < n; i++ {
			cRow := c[i*n : i*n+n]
			clear(cRow)
			for j := 0; j < n; j++ {
				val := a[i*n+j]
				bRow := b[j*n : j*n+n]
				for k := 0; k < n; k += UnrollFactor {
					cRow[k] += val * bRow[k]
					cRow[k+1] += val * bRow[k+1]
					cRow[k+2] += val * bRow[k+2]
					cRow[k+3] += val * bRow[k+3]
				}
			}
		}
	}
}
