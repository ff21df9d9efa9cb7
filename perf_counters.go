// Package tilebench performance counter integration for cache behaviour analysis
package tilebench

import (
	"fmt"
	"strings"
)

// PerfCounters holds hardware counter totals for one measured span
type PerfCounters struct {
	Cycles         uint64 `json:"cycles"`
	Instructions   uint64 `json:"instructions"`
	CacheMisses    uint64 `json:"cache_misses"`
	L1DCacheMisses uint64 `json:"l1d_read_misses"`
	LLCMisses      uint64 `json:"llc_read_misses"`

	// Derived metrics
	IPC float64 `json:"ipc"` // Instructions per cycle
}

// CounterMonitor brackets a measured span with hardware counters.
// PerfMonitor is the Linux implementation.
type CounterMonitor interface {
	Start() error
	Stop() (*PerfCounters, error)
}

// CalculateMetrics fills in derived metrics
func (pc *PerfCounters) CalculateMetrics() {
	if pc.Cycles > 0 {
		pc.IPC = float64(pc.Instructions) / float64(pc.Cycles)
	}
}

// PerOp divides every raw counter by the repetition count.
func (pc *PerfCounters) PerOp(repetitions int) PerfCounters {
	if repetitions <= 0 {
		return *pc
	}
	r := uint64(repetitions)
	return PerfCounters{
		Cycles:         pc.Cycles / r,
		Instructions:   pc.Instructions / r,
		CacheMisses:    pc.CacheMisses / r,
		L1DCacheMisses: pc.L1DCacheMisses / r,
		LLCMisses:      pc.LLCMisses / r,
		IPC:            pc.IPC,
	}
}

// String formats performance counters for display
func (pc *PerfCounters) String() string {
	var sb strings.Builder

	if pc.Cycles > 0 {
		sb.WriteString(fmt.Sprintf("cycles %d, instructions %d, IPC %.2f", pc.Cycles, pc.Instructions, pc.IPC))
	}
	if pc.CacheMisses > 0 {
		sb.WriteString(fmt.Sprintf(", cache-misses %d", pc.CacheMisses))
	}
	if pc.L1DCacheMisses > 0 {
		sb.WriteString(fmt.Sprintf(", L1D-misses %d", pc.L1DCacheMisses))
	}
	if pc.LLCMisses > 0 {
		sb.WriteString(fmt.Sprintf(", LLC-misses %d", pc.LLCMisses))
	}

	return strings.TrimPrefix(sb.String(), ", ")
}
