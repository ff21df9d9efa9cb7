package tilebench

import "time"

// Clock is the source of "now" read at phase boundaries. Elapsed times
// are computed from the returned values only, so a fake clock makes
// timing deterministic in tests.
type Clock interface {
	Now() time.Time
}

// MonotonicClock reads the runtime's monotonic clock via time.Now.
type MonotonicClock struct{}

// Now returns the current time, carrying a monotonic reading.
func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// ElapsedSeconds returns end-start in seconds.
func ElapsedSeconds(start, end time.Time) float64 {
	return end.Sub(start).Seconds()
}

// Rate is bytes per second, 0 when no time elapsed.
func Rate(seconds float64, bytes int64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(bytes) / seconds
}

// GRate converts a byte rate to gigabytes per second.
func GRate(rate float64) float64 {
	return rate / 1e9
}
