package tilebench

import (
	"fmt"
	"io"
	"log"
	"runtime"
)

// State is a phase of one benchmark run.
type State int

const (
	StateInitialize State = iota
	StateVerify
	StateWarmUp
	StateMeasure
	StateReport
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitialize:
		return "Initialize"
	case StateVerify:
		return "Verify"
	case StateWarmUp:
		return "WarmUp"
	case StateMeasure:
		return "Measure"
	case StateReport:
		return "Report"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateReport || s == StateFailed
}

// Config describes one benchmark configuration.
type Config struct {
	// N is the matrix order
	N int

	// Kernels are the variants to verify and time. The naive kernel is
	// always run once as the reference whether or not it is listed.
	Kernels []Kernel

	// Tolerance for verification; a zero AbsTol selects DefaultAbsTol and
	// a negative one demands exact equality
	Tolerance ToleranceConfig

	// AccessBudget sets repetitions to AccessBudget/n^3; 0 selects the
	// package default
	AccessBudget int64

	// Counters, if set, brackets every timed call with hardware counters
	Counters CounterMonitor

	// Clock defaults to MonotonicClock
	Clock Clock

	// Out receives report lines and verification diagnostics
	Out io.Writer

	// Logger receives progress messages; nil is silent
	Logger *log.Logger

	// Results, if set, records every kernel outcome to a JSON session log
	Results *BenchmarkLogger
}

// Validate checks the configuration and every kernel precondition.
func (c Config) Validate() error {
	if c.N <= 0 {
		return ErrNonPositiveDimension
	}
	if len(c.Kernels) == 0 {
		return NewUsageError("Config", "no kernels selected")
	}
	for _, k := range c.Kernels {
		if k.Run == nil {
			return NewUsageError("Config", fmt.Sprintf("kernel %q has no implementation", k.Name))
		}
		if k.Validate == nil {
			continue
		}
		if err := k.Validate(c.N); err != nil {
			return err
		}
	}
	if c.AccessBudget < 0 {
		return NewUsageError("Config", "access budget must not be negative")
	}
	return nil
}

// KernelResult is the measured cost of one kernel.
type KernelResult struct {
	Kernel       string          `json:"kernel"`
	N            int             `json:"n"`
	Step         int             `json:"step,omitempty"`
	Repetitions  int             `json:"repetitions"`
	Seconds      float64         `json:"seconds"`
	SecondsPerOp float64         `json:"seconds_per_op"`
	GFLOPS       float64         `json:"gflops"`
	GBPerSec     float64         `json:"gb_per_sec"`
	Parity       NumericalParity `json:"parity"`
	Counters     *PerfCounters   `json:"counters_per_op,omitempty"`
}

// Header names the kernel, with its tile edge for tiled variants.
func (r KernelResult) Header() string {
	if r.Step > 0 {
		return fmt.Sprintf("%s, step %d", DisplayName(r.Kernel), r.Step)
	}
	return DisplayName(r.Kernel)
}

// Line formats the result as "N <n>, Time Per MatMat <t>".
func (r KernelResult) Line() string {
	return fmt.Sprintf("N %d, Time Per MatMat %e", r.N, r.SecondsPerOp)
}

// Report is the outcome of a successful run.
type Report struct {
	N           int            `json:"n"`
	Repetitions int            `json:"repetitions"`
	Results     []KernelResult `json:"results"`
}

// WriteTo writes a header line and a timing line per kernel.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, res := range r.Results {
		n, err := fmt.Fprintf(w, "%s\n%s\n", res.Header(), res.Line())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Repetitions derives the timed repetition count from an access budget
// divided by the n^3 multiply-adds of one call, floored at 1.
func Repetitions(n int, budget int64) int {
	work := int64(n) * int64(n) * int64(n)
	if work <= 0 {
		return 1
	}
	reps := budget / work
	if reps < 1 {
		return 1
	}
	return int(reps)
}

// Driver walks Initialize → Verify → WarmUp → Measure → Report, or stops
// in Failed when a kernel disagrees with the naive reference. The driver
// owns every buffer; kernels only borrow them for a call.
type Driver struct {
	cfg         Config
	state       State
	transitions []State
	err         error

	reps    int
	a, b    *Matrix
	ref     *Matrix
	outputs []*Matrix
	parity  []NumericalParity
	report  *Report
}

// NewDriver validates cfg and returns a driver in StateInitialize.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Tolerance.AbsTol == 0 {
		cfg.Tolerance = DefaultTolerance()
	}
	if cfg.AccessBudget == 0 {
		cfg.AccessBudget = AccessBudget
	}
	if cfg.Clock == nil {
		cfg.Clock = MonotonicClock{}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &Driver{
		cfg:         cfg,
		state:       StateInitialize,
		transitions: []State{StateInitialize},
	}, nil
}

// State returns the current phase.
func (d *Driver) State() State {
	return d.state
}

// Transitions lists every state entered so far, in order.
func (d *Driver) Transitions() []State {
	return append([]State(nil), d.transitions...)
}

// RepetitionCount is the derived repetition count, 0 before Initialize.
func (d *Driver) RepetitionCount() int {
	return d.reps
}

// Run drives the state machine to a terminal state. A verification
// mismatch is returned as an error for which IsVerificationError holds,
// after the diagnostic has been written to Out.
func (d *Driver) Run() (*Report, error) {
	for !d.state.Terminal() {
		var next State
		var err error
		switch d.state {
		case StateInitialize:
			next, err = d.initialize()
		case StateVerify:
			next, err = d.verify()
		case StateWarmUp:
			next, err = d.warmUp()
		case StateMeasure:
			next, err = d.measure()
		}
		if err != nil {
			d.err = err
		}
		d.enter(next)
	}
	if d.state == StateFailed {
		return nil, d.err
	}
	return d.report, nil
}

func (d *Driver) enter(s State) {
	d.cfg.Logger.Printf("N %d: %s -> %s", d.cfg.N, d.state, s)
	d.state = s
	d.transitions = append(d.transitions, s)
}

func (d *Driver) initialize() (State, error) {
	n := d.cfg.N
	var err error
	if d.a, d.b, err = SeedOperands(n); err != nil {
		return StateFailed, err
	}
	if d.ref, err = NewMatrix(n); err != nil {
		return StateFailed, err
	}
	d.outputs = make([]*Matrix, len(d.cfg.Kernels))
	for i := range d.outputs {
		if d.outputs[i], err = NewMatrix(n); err != nil {
			return StateFailed, err
		}
	}
	d.parity = make([]NumericalParity, len(d.cfg.Kernels))
	d.reps = Repetitions(n, d.cfg.AccessBudget)
	d.cfg.Logger.Printf("N %d: %d repetitions per timed call", n, d.reps)
	return StateVerify, nil
}

func (d *Driver) verify() (State, error) {
	n := d.cfg.N
	MultiplyNaive(n, d.a.Data, d.b.Data, d.ref.Data, 1)

	for i, k := range d.cfg.Kernels {
		out := d.outputs[i]
		k.Run(n, d.a.Data, d.b.Data, out.Data, 1)

		if m, ok := Equivalent(d.ref.Data, out.Data, n, d.cfg.Tolerance); !ok {
			m.Kernel = k.Name
			fmt.Fprintln(d.cfg.Out, m.Diagnostic())
			err := NewVerificationError(k.Name, m)
			if d.cfg.Results != nil {
				if lerr := d.cfg.Results.LogFailure(k.Name, err); lerr != nil {
					d.cfg.Logger.Printf("failed to log result: %v", lerr)
				}
			}
			return StateFailed, err
		}

		d.parity[i].CompareSlices(d.ref.Data, out.Data)
		if k.BitExact && !d.parity[i].BitIdentical() {
			d.cfg.Logger.Printf("%s: expected bit-identical output, got %s", k.DisplayName(), d.parity[i])
		}
		d.cfg.Logger.Printf("%s: verified, %s", k.DisplayName(), d.parity[i])
	}
	return StateWarmUp, nil
}

func (d *Driver) warmUp() (State, error) {
	for i, k := range d.cfg.Kernels {
		k.Run(d.cfg.N, d.a.Data, d.b.Data, d.outputs[i].Data, 1)
	}
	return StateMeasure, nil
}

func (d *Driver) measure() (State, error) {
	n := d.cfg.N
	report := &Report{N: n, Repetitions: d.reps}

	for i, k := range d.cfg.Kernels {
		res := d.timeKernel(k, d.outputs[i])
		res.Parity = d.parity[i]
		report.Results = append(report.Results, res)

		if d.cfg.Results != nil {
			if err := d.cfg.Results.LogResult(res); err != nil {
				d.cfg.Logger.Printf("failed to log result: %v", err)
			}
		}
	}

	d.report = report
	if _, err := report.WriteTo(d.cfg.Out); err != nil {
		return StateFailed, err
	}
	return StateReport, nil
}

// timeKernel runs k for the derived repetition count between two clock
// reads and derives per-operation costs.
func (d *Driver) timeKernel(k Kernel, c *Matrix) KernelResult {
	n := d.cfg.N

	counting := false
	if d.cfg.Counters != nil {
		// Counters follow the OS thread, not the goroutine
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := d.cfg.Counters.Start(); err != nil {
			d.cfg.Logger.Printf("%s: hardware counters unavailable: %v", k.DisplayName(), err)
		} else {
			counting = true
		}
	}

	start := d.cfg.Clock.Now()
	k.Run(n, d.a.Data, d.b.Data, c.Data, d.reps)
	end := d.cfg.Clock.Now()

	res := KernelResult{
		Kernel:      k.Name,
		N:           n,
		Step:        k.Step,
		Repetitions: d.reps,
		Seconds:     ElapsedSeconds(start, end),
	}
	res.SecondsPerOp = res.Seconds / float64(d.reps)
	if res.SecondsPerOp > 0 {
		flops := 2 * float64(n) * float64(n) * float64(n)
		res.GFLOPS = flops / res.SecondsPerOp / 1e9
		bytes := int64(3 * n * n * ElementSize)
		res.GBPerSec = GRate(Rate(res.SecondsPerOp, bytes))
	}

	if counting {
		pc, err := d.cfg.Counters.Stop()
		if err != nil {
			d.cfg.Logger.Printf("%s: reading hardware counters: %v", k.DisplayName(), err)
		} else {
			perOp := pc.PerOp(d.reps)
			res.Counters = &perOp
		}
	}
	return res
}
