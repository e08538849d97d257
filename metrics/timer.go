package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures the duration an operation and saves the result in a Prometheus observer.
// Time units are milliseconds.
type Timer struct {
	// startTime is the time the timer was started
	startTime time.Time
}

// Elapsed returns the duration since the timer was started
func (t Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Finish writes the duration between time.Now() and .startTime, in milliseconds, to
// observer.
func (t Timer) Finish(observer prometheus.Observer) {
	ms := float64(t.Elapsed()) / float64(time.Millisecond)
	observer.Observe(ms)
}
