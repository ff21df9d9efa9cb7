//go:build linux
// +build linux

// Package tilebench provides Linux-specific performance counter implementation
package tilebench

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

type perfEventConfig struct {
	name   string
	typ    uint32
	config uint64
}

// PerfMonitor provides direct access to hardware performance counters
// of the calling thread through perf_event_open. Callers measuring a
// kernel should lock the goroutine to its OS thread for the span.
type PerfMonitor struct {
	fds      []int
	counters []perfEventConfig
}

// cacheConfig creates a cache event configuration
func cacheConfig(cache, op, result uint64) uint64 {
	return cache | (op << 8) | (result << 16)
}

// NewPerfMonitor creates a performance monitor using perf_event_open
func NewPerfMonitor() *PerfMonitor {
	return &PerfMonitor{
		counters: []perfEventConfig{
			{"cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES},
			{"instructions", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS},
			{"cache-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES},
			{"L1-dcache-misses", unix.PERF_TYPE_HW_CACHE, cacheConfig(unix.PERF_COUNT_HW_CACHE_L1D, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
			{"LLC-misses", unix.PERF_TYPE_HW_CACHE, cacheConfig(unix.PERF_COUNT_HW_CACHE_LL, unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_RESULT_MISS)},
		},
	}
}

// Start opens, resets and enables every counter
func (pm *PerfMonitor) Start() error {
	pm.close()

	pm.fds = make([]int, 0, len(pm.counters))

	for _, counter := range pm.counters {
		attr := &unix.PerfEventAttr{
			Type:   counter.typ,
			Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
			Config: counter.config,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
		}

		// Monitor the calling thread on any CPU
		fd, err := unix.PerfEventOpen(attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			pm.close()
			return NewCounterError("PerfMonitor.Start", fmt.Sprintf("failed to open perf event %s", counter.name), err)
		}
		pm.fds = append(pm.fds, fd)
	}

	for i, fd := range pm.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
			pm.close()
			return NewCounterError("PerfMonitor.Start", fmt.Sprintf("failed to reset %s", pm.counters[i].name), err)
		}
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
			pm.close()
			return NewCounterError("PerfMonitor.Start", fmt.Sprintf("failed to enable %s", pm.counters[i].name), err)
		}
	}

	return nil
}

// Stop disables the counters, reads them and releases the descriptors
func (pm *PerfMonitor) Stop() (*PerfCounters, error) {
	if len(pm.fds) == 0 {
		return nil, NewCounterError("PerfMonitor.Stop", "monitor not started", nil)
	}
	defer pm.close()

	for i, fd := range pm.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
			return nil, NewCounterError("PerfMonitor.Stop", fmt.Sprintf("failed to disable %s", pm.counters[i].name), err)
		}
	}

	counters := &PerfCounters{}
	var buf [8]byte
	for i, fd := range pm.fds {
		n, err := unix.Read(fd, buf[:])
		if err != nil || n != len(buf) {
			return nil, NewCounterError("PerfMonitor.Stop", fmt.Sprintf("failed to read %s", pm.counters[i].name), err)
		}
		value := binary.NativeEndian.Uint64(buf[:])

		switch pm.counters[i].name {
		case "cycles":
			counters.Cycles = value
		case "instructions":
			counters.Instructions = value
		case "cache-misses":
			counters.CacheMisses = value
		case "L1-dcache-misses":
			counters.L1DCacheMisses = value
		case "LLC-misses":
			counters.LLCMisses = value
		}
	}

	counters.CalculateMetrics()
	return counters, nil
}

func (pm *PerfMonitor) close() {
	for _, fd := range pm.fds {
		unix.Close(fd)
	}
	pm.fds = nil
}
