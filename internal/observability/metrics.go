package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts arbitration turns by decision.
type Metrics struct {
	mu sync.Mutex

	turnTotal  atomic.Int64
	turnFailed atomic.Int64

	decisions map[string]*DecisionMetrics

	// Last maxDurations turn durations, oldest first.
	durations    []time.Duration
	maxDurations int
}

// DecisionMetrics holds the counters for one decision.
type DecisionMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		decisions:    make(map[string]*DecisionMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordDecision records one completed turn.
func (m *Metrics) RecordDecision(decision string, duration time.Duration) {
	m.turnTotal.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	dm := m.decisionLocked(decision)
	dm.count.Add(1)
	dm.totalDuration.Add(duration.Milliseconds())

	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
}

// RecordFailure records a turn that could not complete.
func (m *Metrics) RecordFailure() {
	m.turnTotal.Add(1)
	m.turnFailed.Add(1)
}

func (m *Metrics) decisionLocked(decision string) *DecisionMetrics {
	dm, ok := m.decisions[decision]
	if !ok {
		dm = &DecisionMetrics{}
		m.decisions[decision] = dm
	}
	return dm
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.turnTotal.Store(0)
	m.turnFailed.Store(0)

	m.mu.Lock()
	m.decisions = make(map[string]*DecisionMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	decisions := make(map[string]*DecisionSnapshot, len(m.decisions))
	for name, dm := range m.decisions {
		count := dm.count.Load()
		snap := &DecisionSnapshot{Count: count, TotalDurationMs: dm.totalDuration.Load()}
		if count > 0 {
			snap.AverageDurationMs = snap.TotalDurationMs / count
		}
		decisions[name] = snap
	}

	return &MetricsSnapshot{
		TurnTotal:       m.turnTotal.Load(),
		TurnFailed:      m.turnFailed.Load(),
		Decisions:       decisions,
		P95DurationMs:   percentile(m.durations, 0.95).Milliseconds(),
		DurationSamples: len(m.durations),
	}
}

func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	TurnTotal       int64                        `json:"turn_total"`
	TurnFailed      int64                        `json:"turn_failed"`
	Decisions       map[string]*DecisionSnapshot `json:"decisions"`
	P95DurationMs   int64                        `json:"p95_duration_ms"`
	DurationSamples int                          `json:"duration_samples"`
}

// DecisionSnapshot represents the counters for one decision.
type DecisionSnapshot struct {
	Count             int64 `json:"count"`
	TotalDurationMs   int64 `json:"total_duration_ms"`
	AverageDurationMs int64 `json:"average_duration_ms"`
}

// SuccessRate returns the share of turns that completed, as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.TurnTotal == 0 {
		return 100.0
	}
	return float64(s.TurnTotal-s.TurnFailed) / float64(s.TurnTotal) * 100.0
}
