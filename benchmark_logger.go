package tilebench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// BenchmarkRecord is one line of a benchmark session log
type BenchmarkRecord struct {
	Kernel    string        `json:"kernel"`
	Status    string        `json:"status"` // "pass" or "fail"
	Result    *KernelResult `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// BenchmarkLogger manages logging of benchmark results to file
type BenchmarkLogger struct {
	mu          sync.Mutex
	records     []BenchmarkRecord
	sessionFile string
	now         func() time.Time
}

// NewBenchmarkLogger starts a session file named <session>_<timestamp>.json
// under dir, creating dir if needed.
func NewBenchmarkLogger(dir, session string) (*BenchmarkLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	bl := &BenchmarkLogger{now: time.Now}
	timestamp := bl.now().Format("20060102_150405")
	bl.sessionFile = filepath.Join(dir, fmt.Sprintf("%s_%s.json", session, timestamp))

	// Write initial file
	if err := bl.flush(); err != nil {
		return nil, err
	}
	return bl, nil
}

// SessionFile is the path being written
func (bl *BenchmarkLogger) SessionFile() string {
	return bl.sessionFile
}

// LogResult records a timed kernel
func (bl *BenchmarkLogger) LogResult(r KernelResult) error {
	return bl.log(BenchmarkRecord{Kernel: r.Kernel, Status: "pass", Result: &r})
}

// LogFailure records a kernel that did not reach measurement
func (bl *BenchmarkLogger) LogFailure(kernel string, err error) error {
	return bl.log(BenchmarkRecord{Kernel: kernel, Status: "fail", Error: err.Error()})
}

func (bl *BenchmarkLogger) log(rec BenchmarkRecord) error {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	rec.Timestamp = bl.now()
	bl.records = append(bl.records, rec)

	// Flush to disk immediately to avoid losing data on crash
	return bl.flush()
}

// flush writes records to disk
func (bl *BenchmarkLogger) flush() error {
	records := bl.records
	if records == nil {
		records = []BenchmarkRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	return os.WriteFile(bl.sessionFile, data, 0644)
}

// LatestLogFile returns the path to the most recent log file in dir
func LatestLogFile(dir string) (string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found in %s", dir)
	}

	var latest string
	var latestTime time.Time
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestTime) {
			latest = file
			latestTime = info.ModTime()
		}
	}

	return latest, nil
}

// ReadBenchmarkLog loads a session file
func ReadBenchmarkLog(path string) ([]BenchmarkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []BenchmarkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// WriteBenchmarkSummary prints a summary of a session file
func WriteBenchmarkSummary(w io.Writer, path string) error {
	records, err := ReadBenchmarkLog(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nBenchmark Summary from %s:\n", filepath.Base(path))
	fmt.Fprintln(w, strings.Repeat("=", 62))

	passed, failed := 0, 0
	for _, r := range records {
		switch r.Status {
		case "pass":
			passed++
			if r.Result == nil {
				continue
			}
			fmt.Fprintf(w, "✓ %-12s N %-6d %e s/op", DisplayName(r.Kernel), r.Result.N, r.Result.SecondsPerOp)
			if r.Result.GFLOPS > 0 {
				fmt.Fprintf(w, " %8.2f GFLOP/s", r.Result.GFLOPS)
			}
			fmt.Fprintln(w)
		case "fail":
			failed++
			fmt.Fprintf(w, "✗ %-12s FAILED: %s\n", DisplayName(r.Kernel), r.Error)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "Total: %d | Passed: %d | Failed: %d\n", len(records), passed, failed)

	return nil
}
