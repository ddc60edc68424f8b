// Package debounce delays an action until input has been quiet for a
// while. A Scheduler holds at most one pending callback: scheduling again
// replaces it.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when Schedule gets a non-positive
// delay.
const DefaultDelay = 300 * time.Millisecond

type stopper interface {
	Stop() bool
}

// Scheduler is a single-slot cancellable timer. It is safe for
// concurrent use.
type Scheduler struct {
	mu         sync.Mutex
	timer      stopper
	generation uint64
	pending    bool

	afterFunc func(time.Duration, func()) stopper
}

// New returns a scheduler backed by real timers.
func New() *Scheduler {
	return &Scheduler{
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Schedule cancels any pending callback and arms a new one. If nothing
// cancels it within delay, onSettle runs once with value.
func (s *Scheduler) Schedule(value string, delay time.Duration, onSettle func(string)) {
	if delay <= 0 {
		delay = DefaultDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.generation++
	gen := s.generation
	s.pending = true
	s.timer = s.afterFunc(delay, func() {
		s.mu.Lock()
		// A timer can expire while Cancel or Schedule holds the lock;
		// the generation tells us it was superseded.
		if gen != s.generation || !s.pending {
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.timer = nil
		s.mu.Unlock()

		onSettle(value)
	})
}

// Cancel drops the pending callback, if any. A cancelled callback never
// runs.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.generation++
}

// Pending reports whether a callback is armed and has not fired yet.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}
