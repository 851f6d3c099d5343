package chord

import (
	"time"

	"k8s.io/utils/clock"
)

// Handle identifies one scheduled flush. A handle is live until the next
// Schedule or Cancel call supersedes it.
type Handle struct {
	gen uint64
}

// Scheduler keeps at most one pending flush timer. Scheduling a new flush
// cancels the previous one before arming the next.
//
// A timer that already fired may still be waiting to run its callback when it
// is superseded; callbacks receive their Handle and should check Live before
// acting. Scheduler is not safe for concurrent use.
type Scheduler struct {
	clock clock.WithDelayedExecution
	timer clock.Timer
	gen   uint64
}

// NewScheduler creates a scheduler on the given clock. A nil clock selects
// the real clock.
func NewScheduler(c clock.WithDelayedExecution) *Scheduler {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Scheduler{clock: c}
}

// Schedule cancels any pending flush and arms fn to run after d.
func (s *Scheduler) Schedule(d time.Duration, fn func(Handle)) Handle {
	s.Cancel()
	h := Handle{gen: s.gen}
	s.timer = s.clock.AfterFunc(d, func() {
		fn(h)
	})
	return h
}

// Cancel stops the pending flush, if any, and invalidates its handle.
func (s *Scheduler) Cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// Live reports whether h is the most recently scheduled, uncancelled flush.
func (s *Scheduler) Live(h Handle) bool {
	return s.timer != nil && h.gen == s.gen
}

// Pending reports whether a flush is scheduled.
func (s *Scheduler) Pending() bool {
	return s.timer != nil
}

// Release marks the live handle as consumed without stopping anything.
// Called from a firing callback once it has done its work.
func (s *Scheduler) Release(h Handle) {
	if s.Live(h) {
		s.timer = nil
		s.gen++
	}
}
