package chord

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/dshills/keychord/internal/input/key"
)

func TestSchedulerSupersedes(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	s := NewScheduler(fc)

	var mu sync.Mutex
	fired := make([]Handle, 0)
	record := func(h Handle) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, h)
	}

	first := s.Schedule(100*time.Millisecond, record)
	fc.Step(50 * time.Millisecond)
	second := s.Schedule(100*time.Millisecond, record)

	assert.False(t, s.Live(first))
	assert.True(t, s.Live(second))

	fc.Step(60 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, fired, "cancelled timer must not fire")
	mu.Unlock()

	fc.Step(50 * time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, second, fired[0])
	mu.Unlock()
}

func TestSchedulerReleaseAndCancel(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	s := NewScheduler(fc)

	h := s.Schedule(time.Second, func(Handle) {})
	assert.True(t, s.Pending())

	s.Release(h)
	assert.False(t, s.Pending())
	assert.False(t, s.Live(h))

	h = s.Schedule(time.Second, func(Handle) {})
	s.Cancel()
	assert.False(t, s.Live(h))
	assert.False(t, fc.HasWaiters(), "cancel stops the timer")
}

func TestBufferDrain(t *testing.T) {
	b := NewBuffer(0, NewScheduler(testingclock.NewFakeClock(time.Now())))
	assert.Equal(t, DefaultWait, b.Wait())

	_, ok := b.Drain()
	assert.False(t, ok, "empty buffer drains nothing")

	first := key.NewEvent(65, key.ModNone)
	last := key.NewEvent(66, key.ModCtrl)
	b.Append("a", first, "editor")
	b.Append("ctrl+b", last, "sidebar")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, Sequence("a,ctrl+b"), b.Keys())

	p, ok := b.Drain()
	require.True(t, ok)
	assert.Equal(t, Sequence("a,ctrl+b"), p.Keys)
	assert.Equal(t, "sidebar", p.Context, "latest context wins")
	assert.Equal(t, last.Code, p.Event.Code, "latest event wins")

	assert.Equal(t, 0, b.Len())
	_, ok = b.Drain()
	assert.False(t, ok)
}

func TestBufferRestartKeepsOneTimer(t *testing.T) {
	fc := testingclock.NewFakeClock(time.Now())
	b := NewBuffer(200*time.Millisecond, NewScheduler(fc))

	var mu sync.Mutex
	flushes := 0
	onIdle := func(h Handle) {
		mu.Lock()
		defer mu.Unlock()
		if !b.Live(h) {
			return
		}
		b.Release(h)
		if _, ok := b.Drain(); ok {
			flushes++
		}
	}

	for i := 0; i < 5; i++ {
		mu.Lock()
		b.Append("a", key.NewEvent(65, key.ModNone), "global")
		b.Restart(onIdle)
		mu.Unlock()
		fc.Step(150 * time.Millisecond)
	}

	mu.Lock()
	assert.Equal(t, 0, flushes, "no flush while keys keep arriving")
	mu.Unlock()

	fc.Step(100 * time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return flushes == 1
	}, time.Second, time.Millisecond)

	assert.False(t, b.Timing())
}
