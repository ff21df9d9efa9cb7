package tilebench

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions that decide how wide
// the compiler can vectorize the kernels' inner loops
type CPUFeatures struct {
	Arch string

	// x86
	HasSSE4    bool
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool // Foundation
	HasFMA     bool

	// arm64
	HasASIMD bool // NEON
	HasSVE   bool
	HasSVE2  bool
}

// Global CPU feature detection
var cpuFeatures = detectCPUFeatures()

// detectCPUFeatures reads golang.org/x/sys/cpu for the running architecture
func detectCPUFeatures() CPUFeatures {
	f := CPUFeatures{Arch: runtime.GOARCH}
	switch runtime.GOARCH {
	case "amd64", "386":
		f.HasSSE4 = cpu.X86.HasSSE41 || cpu.X86.HasSSE42
		f.HasAVX = cpu.X86.HasAVX
		f.HasAVX2 = cpu.X86.HasAVX2
		f.HasAVX512F = cpu.X86.HasAVX512F
		f.HasFMA = cpu.X86.HasFMA
	case "arm64":
		f.HasASIMD = cpu.ARM64.HasASIMD
		f.HasSVE = cpu.ARM64.HasSVE
		f.HasSVE2 = cpu.ARM64.HasSVE2
	}
	return f
}

// DetectedCPUFeatures returns the features found at startup
func DetectedCPUFeatures() CPUFeatures {
	return cpuFeatures
}

// VectorWidth is the widest SIMD register in bytes, 8 for scalar-only
func (f CPUFeatures) VectorWidth() int {
	switch {
	case f.HasAVX512F:
		return 64
	case f.HasAVX2, f.HasAVX:
		return 32
	case f.HasSSE4, f.HasASIMD:
		return 16
	}
	return 8
}

// Names lists the detected extensions
func (f CPUFeatures) Names() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(f.HasSSE4, "SSE4")
	add(f.HasAVX, "AVX")
	add(f.HasAVX2, "AVX2")
	add(f.HasFMA, "FMA")
	add(f.HasAVX512F, "AVX512F")
	add(f.HasASIMD, "ASIMD")
	add(f.HasSVE, "SVE")
	add(f.HasSVE2, "SVE2")
	return features
}

// GetCPUInfo returns a string describing available CPU features
func GetCPUInfo() string {
	names := cpuFeatures.Names()
	if len(names) == 0 {
		return runtime.GOARCH + ": no SIMD extensions detected"
	}
	return runtime.GOARCH + " CPU features: " + strings.Join(names, ", ")
}
