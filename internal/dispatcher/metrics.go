package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	// Per-command metrics, keyed by command name.
	commandMetrics map[string]*CommandMetrics

	// Global counters
	totalDispatches uint64
	totalUnmatched  uint64
	totalDropped    uint64
	totalPanics     uint64

	// Timing
	totalDuration time.Duration
}

// CommandMetrics holds metrics for one command name.
type CommandMetrics struct {
	Name          string
	DispatchCount uint64
	ErrorCount    uint64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
	LastStatus    Status
	LastDispatch  time.Time
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		commandMetrics: make(map[string]*CommandMetrics),
	}
}

// RecordDispatch records a dispatch that found a binding.
func (m *Metrics) RecordDispatch(name string, duration time.Duration, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += duration

	failed := status != StatusHandled
	if failed {
		m.totalDropped++
	}

	cm := m.commandMetrics[name]
	if cm == nil {
		cm = &CommandMetrics{
			Name:        name,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.commandMetrics[name] = cm
	}

	cm.DispatchCount++
	cm.TotalDuration += duration
	cm.LastStatus = status
	cm.LastDispatch = time.Now()

	if duration < cm.MinDuration {
		cm.MinDuration = duration
	}
	if duration > cm.MaxDuration {
		cm.MaxDuration = duration
	}

	if failed {
		cm.ErrorCount++
	}
}

// RecordUnmatched records a sequence with no binding.
func (m *Metrics) RecordUnmatched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalUnmatched++
}

// RecordPanic records a panic recovery.
func (m *Metrics) RecordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPanics++
}

// TotalDispatches returns the number of dispatches that found a binding.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalUnmatched returns the number of sequences with no binding.
func (m *Metrics) TotalUnmatched() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalUnmatched
}

// TotalDropped returns the number of bound commands that did not complete.
func (m *Metrics) TotalDropped() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDropped
}

// TotalPanics returns the number of panics recovered.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// AverageDuration returns the average dispatch duration.
func (m *Metrics) AverageDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.totalDispatches == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.totalDispatches)
}

// CommandStats returns a copy of the metrics for one command, or nil.
func (m *Metrics) CommandStats(name string) *CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cm := m.commandMetrics[name]
	if cm == nil {
		return nil
	}
	c := *cm
	return &c
}

// TopCommands returns the n most dispatched commands.
func (m *Metrics) TopCommands(n int) []*CommandMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]*CommandMetrics, 0, len(m.commandMetrics))
	for _, cm := range m.commandMetrics {
		c := *cm
		commands = append(commands, &c)
	}

	sort.Slice(commands, func(i, j int) bool {
		if commands[i].DispatchCount != commands[j].DispatchCount {
			return commands[i].DispatchCount > commands[j].DispatchCount
		}
		return commands[i].Name < commands[j].Name
	})

	if n > len(commands) {
		n = len(commands)
	}
	return commands[:n]
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commandMetrics = make(map[string]*CommandMetrics)
	m.totalDispatches = 0
	m.totalUnmatched = 0
	m.totalDropped = 0
	m.totalPanics = 0
	m.totalDuration = 0
}

// MetricsSnapshot is a point-in-time copy of the global counters.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalUnmatched  uint64
	TotalDropped    uint64
	TotalPanics     uint64
	AverageDuration time.Duration
	CommandCount    int
	Timestamp       time.Time
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		TotalDispatches: m.totalDispatches,
		TotalUnmatched:  m.totalUnmatched,
		TotalDropped:    m.totalDropped,
		TotalPanics:     m.totalPanics,
		CommandCount:    len(m.commandMetrics),
		Timestamp:       time.Now(),
	}
	if m.totalDispatches > 0 {
		snapshot.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}
	return snapshot
}

// AverageDuration returns the average duration for the command.
func (cm *CommandMetrics) AverageDuration() time.Duration {
	if cm.DispatchCount == 0 {
		return 0
	}
	return cm.TotalDuration / time.Duration(cm.DispatchCount)
}
