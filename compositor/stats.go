package compositor

import (
	"sync"
	"time"
)

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t.
func (DefaultTimeProvider) Since(t time.Time) time.Duration { return time.Since(t) }

// Stats summarizes the Compose calls of a session.
type Stats struct {
	Composed        uint64            // successful calls
	Failed          uint64            // failed calls
	FailuresBy      map[string]uint64 // failed calls per reason code
	LastDuration    time.Duration
	AverageDuration time.Duration
	PeakDuration    time.Duration
	LastComposed    time.Time
}

// statsRecorder collects Stats. Reads may come from another goroutine than
// the one composing, so it carries its own lock.
type statsRecorder struct {
	mu         sync.RWMutex
	composed   uint64
	failed     uint64
	failuresBy map[string]uint64
	total      time.Duration
	last       time.Duration
	peak       time.Duration
	lastAt     time.Time
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{failuresBy: make(map[string]uint64)}
}

func (r *statsRecorder) recordSuccess(at time.Time, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.composed++
	r.total += d
	r.last = d
	r.lastAt = at
	if d > r.peak {
		r.peak = d
	}
}

func (r *statsRecorder) recordFailure(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
	r.failuresBy[reason]++
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		Composed:     r.composed,
		Failed:       r.failed,
		FailuresBy:   make(map[string]uint64, len(r.failuresBy)),
		LastDuration: r.last,
		PeakDuration: r.peak,
		LastComposed: r.lastAt,
	}
	for reason, n := range r.failuresBy {
		s.FailuresBy[reason] = n
	}
	if r.composed > 0 {
		s.AverageDuration = r.total / time.Duration(r.composed)
	}
	return s
}
