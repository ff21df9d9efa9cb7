// Package tilebench structured error types for better error handling
package tilebench

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Missing or malformed command-line input
	ErrTypeUsage ErrorType = iota
	// Kernel preconditions the caller must guarantee
	ErrTypePrecondition
	// A kernel disagreed with the naive reference
	ErrTypeVerification
	// Hardware performance counters could not be used
	ErrTypeCounter
)

// BenchError represents a structured error with context
type BenchError struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context, a Mismatch for verification errors
}

// Error implements the error interface
func (e *BenchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tilebench %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("tilebench %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *BenchError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeUsage:
		return "Usage"
	case ErrTypePrecondition:
		return "Precondition"
	case ErrTypeVerification:
		return "Verification"
	case ErrTypeCounter:
		return "Counter"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewUsageError creates a command-line usage error
func NewUsageError(op string, message string) error {
	return &BenchError{
		Type:    ErrTypeUsage,
		Op:      op,
		Message: message,
	}
}

// NewPreconditionError creates an error for a violated kernel precondition
func NewPreconditionError(op string, message string) error {
	return &BenchError{
		Type:    ErrTypePrecondition,
		Op:      op,
		Message: message,
	}
}

// NewVerificationError creates an error carrying the first mismatch found
func NewVerificationError(op string, m Mismatch) error {
	return &BenchError{
		Type:    ErrTypeVerification,
		Op:      op,
		Message: m.String(),
		Context: m,
	}
}

// NewCounterError creates a hardware counter error
func NewCounterError(op string, message string, err error) error {
	return &BenchError{
		Type:    ErrTypeCounter,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrMissingDimension indicates the matrix dimension argument is absent
	ErrMissingDimension = NewUsageError("Args", "need matrix dimension n (e.g. matmat 8 or matmat 8 2)")

	// ErrNonPositiveDimension indicates n <= 0
	ErrNonPositiveDimension = NewPreconditionError("Matrix", "dimension must be positive")

	// ErrNonPositiveStep indicates a tile edge <= 0
	ErrNonPositiveStep = NewPreconditionError("Tile", "step must be positive")

	// ErrUnrollRemainder indicates n is not a multiple of the unroll factor
	ErrUnrollRemainder = NewPreconditionError("Unrolled", fmt.Sprintf("n must be a multiple of %d", UnrollFactor))

	// ErrTileRemainder indicates step does not evenly divide n
	ErrTileRemainder = NewPreconditionError("Blocked", "step must evenly divide n")

	// ErrCountersUnsupported indicates the platform has no perf_event support
	ErrCountersUnsupported = NewCounterError("PerfMonitor", "hardware counters not supported on this platform", nil)
)

func errorType(err error) (ErrorType, bool) {
	var e *BenchError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsUsageError checks if an error is a usage error
func IsUsageError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeUsage
}

// IsPreconditionError checks if an error is a precondition violation
func IsPreconditionError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypePrecondition
}

// IsVerificationError checks if an error is a verification mismatch
func IsVerificationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeVerification
}

// IsCounterError checks if an error came from the hardware counters
func IsCounterError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeCounter
}

// MismatchOf extracts the mismatch carried by a verification error.
func MismatchOf(err error) (Mismatch, bool) {
	var e *BenchError
	if errors.As(err, &e) && e.Type == ErrTypeVerification {
		m, ok := e.Context.(Mismatch)
		return m, ok
	}
	return Mismatch{}, false
}
