package engine

import (
	"sync"
	"time"
)

// Scheduler runs a single deferred task. Scheduling a new task always
// cancels any prior one, so at most one task is ever pending. A task
// whose timer fires concurrently with Cancel may still be in flight
// when Cancel returns; callers re-validate their own state when the
// task runs rather than relying on cancellation having won the race.
type Scheduler interface {
	// Schedule queues fn to run after d, replacing any pending task.
	Schedule(d time.Duration, fn func())

	// Cancel discards the pending task, if any.
	Cancel()

	// Pending reports whether a task is queued and has not yet fired.
	Pending() bool
}

// TimerScheduler implements Scheduler on a time.Timer. A sequence
// number invalidates timers that fire after they have been superseded
// or cancelled.
type TimerScheduler struct {
	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
}

// NewTimerScheduler returns a Scheduler backed by the runtime timer.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// Schedule queues fn to run after d, cancelling any pending task first.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	s.seq++
	seq := s.seq
	s.pending = true
	s.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		if seq != s.seq {
			// Superseded or cancelled after the timer fired.
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()

		// Run outside the scheduler lock so fn may schedule again.
		fn()
	})
}

// Cancel discards the pending task, if any.
func (s *TimerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// Pending reports whether a task is queued and has not yet fired.
func (s *TimerScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *TimerScheduler) cancelLocked() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}
