package metrics

import (
	"mercator-hq/parley/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks the session store.
//
// Metrics:
//   - parley_engine_sessions_created_total: Sessions created on first contact
//   - parley_engine_sessions_pruned_total: Idle sessions removed by pruning
type SessionMetrics struct {
	createdTotal prometheus.Counter
	prunedTotal  prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics with the provided registry.
func NewSessionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SessionMetrics {
	sm := &SessionMetrics{
		createdTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sessions_created_total",
				Help:      "Total number of sessions created",
			},
		),
		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sessions_pruned_total",
				Help:      "Total number of idle sessions pruned",
			},
		),
	}

	registry.MustRegister(sm.createdTotal, sm.prunedTotal)

	return sm
}

// RecordCreated records a new session.
func (sm *SessionMetrics) RecordCreated() {
	sm.createdTotal.Inc()
}

// RecordPruned records n pruned sessions.
func (sm *SessionMetrics) RecordPruned(n int64) {
	sm.prunedTotal.Add(float64(n))
}
