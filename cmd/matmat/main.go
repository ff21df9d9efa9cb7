// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command matmat verifies and times the matrix-multiplication kernels.
//
//	matmat [flags] <n>          naive and unrolled kernels
//	matmat [flags] <n> <step>   naive, blocked and recursive kernels
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/LynnColeArt/tilebench"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code. Usage errors, precondition
// violations and verification failures exit 0 unless -strict is set.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("matmat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		kernels  = fs.String("kernels", "", "Comma-separated kernels to time (naive, unrolled, blocked, recursive)")
		tol      = fs.Float64("tol", tilebench.DefaultAbsTol, "Absolute tolerance for verification")
		budget   = fs.Int64("budget", tilebench.AccessBudget, "Element accesses per timed phase")
		counters = fs.Bool("counters", false, "Collect hardware performance counters (Linux)")
		logDir   = fs.String("log-dir", "", "Write a JSON session log to this directory")
		strict   = fs.Bool("strict", false, "Exit 1 on usage, precondition or verification failures")
		verbose  = fs.Bool("v", false, "Verbose output")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: matmat [flags] <n> [step]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return failCode(*strict)
	}

	errLog := log.New(stderr, "matmat: ", 0)
	fail := func(err error) int {
		if tilebench.IsUsageError(err) {
			fmt.Fprintln(stdout, "Need Matrix Dimension n passed as Command Line Arguments (e.g. ./matmat 8 or ./matmat 8 2)")
		}
		errLog.Print(err)
		return failCode(*strict)
	}

	n, step, err := parseDims(fs.Args())
	if err != nil {
		return fail(err)
	}

	names := tilebench.DefaultKernelNames(step)
	if *kernels != "" {
		names = strings.Split(*kernels, ",")
	}
	if step == 0 {
		step = tilebench.DefaultTileSize
	}
	selected, err := tilebench.SelectKernels(names, step)
	if err != nil {
		return fail(err)
	}

	cfg := tilebench.Config{
		N:            n,
		Kernels:      selected,
		Tolerance:    tilebench.ToleranceConfig{AbsTol: *tol},
		AccessBudget: *budget,
		Out:          stdout,
	}
	if *verbose {
		cfg.Logger = log.New(stderr, "", log.Lmicroseconds)
		version, _ := tilebench.Version()
		cfg.Logger.Printf("tilebench %s, %s, %d-byte vectors", version, tilebench.GetCPUInfo(),
			tilebench.DetectedCPUFeatures().VectorWidth())
	}
	if *counters {
		cfg.Counters = tilebench.NewPerfMonitor()
	}
	if *logDir != "" {
		bl, err := tilebench.NewBenchmarkLogger(*logDir, fmt.Sprintf("matmat_n%d", n))
		if err != nil {
			errLog.Print(err)
			return 1
		}
		cfg.Results = bl
	}

	d, err := tilebench.NewDriver(cfg)
	if err != nil {
		return fail(err)
	}
	report, err := d.Run()
	if err != nil {
		// The driver already printed the mismatch diagnostic
		if tilebench.IsVerificationError(err) {
			return failCode(*strict)
		}
		return fail(err)
	}

	if *verbose {
		for _, r := range report.Results {
			errLog.Printf("%s: %d reps, %.2f GFLOP/s, %.2f GB/s, %s",
				tilebench.DisplayName(r.Kernel), r.Repetitions, r.GFLOPS, r.GBPerSec, r.Parity)
			if r.Counters != nil {
				errLog.Printf("%s: per op %s", tilebench.DisplayName(r.Kernel), r.Counters)
			}
		}
	}
	return 0
}

func failCode(strict bool) int {
	if strict {
		return 1
	}
	return 0
}

// parseDims reads "<n> [step]"; step is 0 when absent.
func parseDims(args []string) (n, step int, err error) {
	if len(args) < 1 {
		return 0, 0, tilebench.ErrMissingDimension
	}
	if len(args) > 2 {
		return 0, 0, tilebench.NewUsageError("Args", "too many arguments")
	}
	if n, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, tilebench.NewUsageError("Args", fmt.Sprintf("invalid dimension %q", args[0]))
	}
	if len(args) == 2 {
		if step, err = strconv.Atoi(args[1]); err != nil {
			return 0, 0, tilebench.NewUsageError("Args", fmt.Sprintf("invalid step %q", args[1]))
		}
		if step <= 0 {
			return 0, 0, tilebench.ErrNonPositiveStep
		}
	}
	return n, step, nil
}
