package tilebench

import "fmt"

// ProbeMode selects whether the cache-line probe reads or writes.
type ProbeMode int

const (
	ProbeRead ProbeMode = iota
	ProbeWrite
)

func (m ProbeMode) String() string {
	if m == ProbeWrite {
		return "Writing"
	}
	return "Reading"
}

// ProbeLevel is a working-set size sized to live in one level of the
// memory hierarchy.
type ProbeLevel struct {
	Name     string
	Elements int
}

// ProbeLevels returns the working sets from main memory down to L1:
// twice L3, twice L2, twice L1, and half of L1.
func ProbeLevels() []ProbeLevel {
	return []ProbeLevel{
		{Name: "Main Memory", Elements: 2 * L3CacheSize / ElementSize},
		{Name: "L3 cache", Elements: 2 * L2CacheSize / ElementSize},
		{Name: "L2 cache", Elements: 2 * L1CacheSize / ElementSize},
		{Name: "L1 cache", Elements: L1CacheSize / 2 / ElementSize},
	}
}

// ProbeResult is one timed sweep.
type ProbeResult struct {
	Level    string
	Strided  bool
	Result   float64 // sum read, or squared norm after writing
	Seconds  float64
	Accesses int64
}

// SecondsPerDouble is the average cost of one element access.
func (r ProbeResult) SecondsPerDouble() float64 {
	if r.Accesses == 0 {
		return 0
	}
	return r.Seconds / float64(r.Accesses)
}

// GBPerSec is the achieved bandwidth.
func (r ProbeResult) GBPerSec() float64 {
	return GRate(Rate(r.Seconds, r.Accesses*ElementSize))
}

// String matches "Result %e, Seconds %e, Seconds Per Double %e, Gbytes/sec %e".
func (r ProbeResult) String() string {
	return fmt.Sprintf("Result %e, Seconds %e, Seconds Per Double %e, Gbytes/sec %e",
		r.Result, r.Seconds, r.SecondsPerDouble(), r.GBPerSec())
}

// CacheProbe times sequential sweeps against sweeps that jump a whole
// cache line between consecutive accesses.
type CacheProbe struct {
	Clock Clock

	// Accesses is the element accesses per sweep; 0 selects ProbeAccesses
	Accesses int64

	// LineElements is doubles per cache line; 0 selects CacheLineSize/8
	LineElements int
}

func (p *CacheProbe) defaults() (Clock, int64, int) {
	clock, accesses, line := p.Clock, p.Accesses, p.LineElements
	if clock == nil {
		clock = MonotonicClock{}
	}
	if accesses <= 0 {
		accesses = ProbeAccesses
	}
	if line <= 0 {
		line = CacheLineSize / ElementSize
	}
	return clock, accesses, line
}

// Run sweeps one level, strided first and then sequential, each over a
// freshly reset buffer.
func (p *CacheProbe) Run(mode ProbeMode, level ProbeLevel) (strided, sequential ProbeResult) {
	clock, accesses, line := p.defaults()

	size := level.Elements
	if size < line {
		size = line
	}
	size -= size % line
	iters := int(accesses / int64(size))
	if iters < 1 {
		iters = 1
	}
	vals := make([]float64, size)

	sweep := func(stride bool) ProbeResult {
		resetVector(vals)
		start := clock.Now()
		var result float64
		switch {
		case mode == ProbeRead && stride:
			result = readVectorStrided(vals, iters, line)
		case mode == ProbeRead:
			result = readVector(vals, iters)
		case stride:
			writeVectorStrided(vals, iters, line)
			result = norm(vals)
		default:
			writeVector(vals, iters)
			result = norm(vals)
		}
		end := clock.Now()
		return ProbeResult{
			Level:    level.Name,
			Strided:  stride,
			Result:   result,
			Seconds:  ElapsedSeconds(start, end),
			Accesses: int64(iters) * int64(size),
		}
	}

	return sweep(true), sweep(false)
}

func resetVector(vals []float64) {
	for i := range vals {
		vals[i] = 1.0
	}
}

func readVector(vals []float64, iters int) float64 {
	var sum float64
	for iter := 0; iter < iters; iter++ {
		for _, v := range vals {
			sum += v
		}
	}
	return sum
}

// readVectorStrided touches element i of every cache line before moving
// to element i+1, so consecutive reads never share a line.
func readVectorStrided(vals []float64, iters, line int) float64 {
	var sum float64
	for iter := 0; iter < iters; iter++ {
		for i := 0; i < line; i++ {
			for j := 0; j < len(vals); j += line {
				sum += vals[j+i]
			}
		}
	}
	return sum
}

func writeVector(vals []float64, iters int) {
	for iter := 0; iter < iters; iter++ {
		for i := range vals {
			vals[i] = 1.0
		}
	}
}

func writeVectorStrided(vals []float64, iters, line int) {
	for iter := 0; iter < iters; iter++ {
		for i := 0; i < line; i++ {
			for j := 0; j < len(vals); j += line {
				vals[j+i] = 1.0
			}
		}
	}
}

func norm(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v * v
	}
	return sum
}
