package chord

import (
	"time"

	"github.com/dshills/keychord/internal/input/key"
)

// DefaultWait is the idle window used when none is configured.
const DefaultWait = 500 * time.Millisecond

// Pending is a flushed burst: the chord sequence plus the last triggering
// event and the context that was active when it was recorded.
type Pending struct {
	Keys    Sequence
	Context string
	Event   key.Event
}

// Buffer accumulates chords from a burst of key events and owns the single
// idle timer that closes the burst.
//
// The buffer is Idle until the first chord is appended, Accumulating until
// the idle timer fires, then drained back to Idle. Buffer is not safe for
// concurrent use; the engine serializes access to it.
type Buffer struct {
	wait      time.Duration
	scheduler *Scheduler

	chords  []Chord
	event   key.Event
	context string
}

// NewBuffer creates a buffer that waits d of idle input before flushing.
// A non-positive d selects DefaultWait.
func NewBuffer(d time.Duration, scheduler *Scheduler) *Buffer {
	if d <= 0 {
		d = DefaultWait
	}
	if scheduler == nil {
		scheduler = NewScheduler(nil)
	}
	return &Buffer{
		wait:      d,
		scheduler: scheduler,
		chords:    make([]Chord, 0, 4), // Most sequences are short
	}
}

// Wait returns the idle window.
func (b *Buffer) Wait() time.Duration {
	return b.wait
}

// Append records a chord and the event and context that produced it.
// The most recent event and context win.
func (b *Buffer) Append(c Chord, ev key.Event, context string) {
	b.chords = append(b.chords, c)
	b.event = ev
	b.context = context
}

// Restart cancels the pending idle timer and arms a new one that calls fn.
func (b *Buffer) Restart(fn func(Handle)) Handle {
	return b.scheduler.Schedule(b.wait, fn)
}

// Live reports whether h belongs to the current idle timer.
func (b *Buffer) Live(h Handle) bool {
	return b.scheduler.Live(h)
}

// Release consumes the idle timer from inside its own callback.
func (b *Buffer) Release(h Handle) {
	b.scheduler.Release(h)
}

// Cancel stops the idle timer without draining.
func (b *Buffer) Cancel() {
	b.scheduler.Cancel()
}

// Timing reports whether an idle timer is armed.
func (b *Buffer) Timing() bool {
	return b.scheduler.Pending()
}

// Len returns the number of buffered chords.
func (b *Buffer) Len() int {
	return len(b.chords)
}

// Keys returns the sequence buffered so far.
func (b *Buffer) Keys() Sequence {
	return Join(b.chords...)
}

// Drain returns the buffered burst and clears the buffer. The boolean is
// false when nothing was buffered; the buffer is cleared either way.
func (b *Buffer) Drain() (Pending, bool) {
	defer b.clear()

	if len(b.chords) == 0 {
		return Pending{}, false
	}
	return Pending{
		Keys:    Join(b.chords...),
		Context: b.context,
		Event:   b.event,
	}, true
}

func (b *Buffer) clear() {
	b.chords = b.chords[:0]
	b.event = key.Event{}
	b.context = ""
}
