// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command benchlog summarizes a JSON session log written by matmat -log-dir.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/LynnColeArt/tilebench"
)

func main() {
	var (
		dir  = flag.String("dir", "benchmark_logs", "Directory to take the latest session log from")
		file = flag.String("file", "", "Session log to summarize (overrides -dir)")
	)
	flag.Parse()

	path := *file
	if path == "" {
		latest, err := tilebench.LatestLogFile(*dir)
		if err != nil {
			fmt.Println("Usage: benchlog [-dir <log dir>] [-file <session.json>]")
			log.Fatal(err)
		}
		path = latest
	}

	if err := tilebench.WriteBenchmarkSummary(os.Stdout, path); err != nil {
		log.Fatalf("Failed to summarize %s: %v", path, err)
	}
}
