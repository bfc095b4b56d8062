package quizkit

import "sync/atomic"

// MetricID enumerates the in-process counters.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricRegisterSuccess
	MetricRegisterFailure
	MetricRestoreSuccess
	MetricRestoreFailure
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricLogout
	MetricAttemptStarted
	MetricAttemptCompleted
	MetricAttemptSaveFailed

	metricCount
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Metrics is a fixed set of atomic counters. A nil *Metrics is a no-op, so
// call sites never need to guard increments.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// NewMetrics returns an active counter set, or nil when disabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies every counter. Safe to call concurrently with increments.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
