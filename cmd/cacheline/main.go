// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cacheline compares sequential sweeps against cache-line-strided
// sweeps over working sets sized for main memory, L3, L2 and L1.
//
//	cacheline [flags] <0|1>     0 reads, 1 writes
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/LynnColeArt/tilebench"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cacheline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	accesses := fs.Int64("accesses", tilebench.ProbeAccesses, "Element accesses per sweep")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cacheline [flags] <0|1>   (0 = read, 1 = write)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 0
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 0
	}
	flagValue, err := strconv.Atoi(fs.Arg(0))
	if err != nil || (flagValue != 0 && flagValue != 1) {
		fs.Usage()
		return 0
	}
	mode := tilebench.ProbeRead
	if flagValue == 1 {
		mode = tilebench.ProbeWrite
	}

	probe := &tilebench.CacheProbe{Accesses: *accesses}
	for _, level := range tilebench.ProbeLevels() {
		direction := "from"
		if mode == tilebench.ProbeWrite {
			direction = "to"
		}
		fmt.Fprintf(stdout, "%s %s %s...\n", mode, direction, level.Name)

		strided, sequential := probe.Run(mode, level)
		fmt.Fprintln(stdout, "1. Striding Cacheline:")
		fmt.Fprintln(stdout, strided)
		fmt.Fprintln(stdout, "2. Utilizing Cacheline")
		fmt.Fprintln(stdout, sequential)
		fmt.Fprint(stdout, "\n\n")
	}
	return 0
}
