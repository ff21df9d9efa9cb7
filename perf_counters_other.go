//go:build !linux
// +build !linux

// Package tilebench provides performance counter stubs for non-Linux platforms
package tilebench

// PerfMonitor stub for non-Linux platforms
type PerfMonitor struct{}

// NewPerfMonitor returns a stub monitor on non-Linux platforms
func NewPerfMonitor() *PerfMonitor {
	return &PerfMonitor{}
}

// Start always fails on non-Linux platforms
func (pm *PerfMonitor) Start() error {
	return ErrCountersUnsupported
}

// Stop always fails on non-Linux platforms
func (pm *PerfMonitor) Stop() (*PerfCounters, error) {
	return nil, ErrCountersUnsupported
}
