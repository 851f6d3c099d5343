package input

import (
	"sync/atomic"
	"time"
)

// Metrics tracks key event processing.
type Metrics struct {
	keyEventsTotal      atomic.Uint64
	modifierEventsTotal atomic.Uint64
	chordsTotal         atomic.Uint64
	unrecognizedTotal   atomic.Uint64
	flushesTotal        atomic.Uint64
	hookConsumptions    atomic.Uint64

	// Peak burst length in chords
	peakBurst atomic.Int64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordKeyEvent records a key event that reached the engine.
func (m *Metrics) RecordKeyEvent(modifier bool) {
	m.keyEventsTotal.Add(1)
	if modifier {
		m.modifierEventsTotal.Add(1)
	}
}

// RecordChord records a recognized chord.
func (m *Metrics) RecordChord() {
	m.chordsTotal.Add(1)
}

// RecordUnrecognized records a key that could not be normalized.
func (m *Metrics) RecordUnrecognized() {
	m.unrecognizedTotal.Add(1)
}

// RecordFlush records a flushed burst of n chords.
func (m *Metrics) RecordFlush(n int) {
	m.flushesTotal.Add(1)

	burst := int64(n)
	for {
		current := m.peakBurst.Load()
		if burst <= current {
			break
		}
		if m.peakBurst.CompareAndSwap(current, burst) {
			break
		}
	}
}

// RecordHookConsumption records when a hook consumes an event.
func (m *Metrics) RecordHookConsumption() {
	m.hookConsumptions.Add(1)
}

// MetricsSnapshot is a point-in-time copy of the engine metrics.
type MetricsSnapshot struct {
	KeyEventsTotal      uint64
	ModifierEventsTotal uint64
	ChordsTotal         uint64
	UnrecognizedTotal   uint64
	FlushesTotal        uint64
	HookConsumptions    uint64
	PeakBurst           int
	Uptime              time.Duration
}

// Snapshot returns the current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		KeyEventsTotal:      m.keyEventsTotal.Load(),
		ModifierEventsTotal: m.modifierEventsTotal.Load(),
		ChordsTotal:         m.chordsTotal.Load(),
		UnrecognizedTotal:   m.unrecognizedTotal.Load(),
		FlushesTotal:        m.flushesTotal.Load(),
		HookConsumptions:    m.hookConsumptions.Load(),
		PeakBurst:           int(m.peakBurst.Load()),
		Uptime:              time.Since(m.startTime),
	}
}
