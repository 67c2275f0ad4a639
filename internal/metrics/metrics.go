// Package metrics records device round-trip statistics.
package metrics

import "time"

// Recorder receives one call per device request.
type Recorder interface {
	// RecordRoundTrip reports a completed request and the attempts it took.
	RecordRoundTrip(command string, attempts int, d time.Duration)
	// RecordFailure reports a request that exhausted its retry budget.
	RecordFailure(command string)
	// RecordBytes reports macro buffer bytes moved in one direction ("in"/"out").
	RecordBytes(direction string, n int)
}

// Noop is a Recorder that discards all data.
type Noop struct{}

func (Noop) RecordRoundTrip(command string, attempts int, d time.Duration) {}
func (Noop) RecordFailure(command string)                                 {}
func (Noop) RecordBytes(direction string, n int)                          {}
