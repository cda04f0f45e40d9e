package metrics

import (
	"mercator-hq/parley/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleMetrics tracks the pattern index.
//
// Metrics:
//   - parley_engine_rules: Rules currently in the index
//   - parley_engine_rules_learned_total: Rules inserted by the learn element
//   - parley_engine_rule_reloads_total: Rule reloads by status
type RuleMetrics struct {
	rules        prometheus.Gauge
	learnedTotal prometheus.Counter
	reloadsTotal *prometheus.CounterVec
}

// NewRuleMetrics creates and registers rule metrics with the provided registry.
func NewRuleMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleMetrics {
	rm := &RuleMetrics{
		rules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules",
				Help:      "Number of rules in the pattern index",
			},
		),

		learnedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_learned_total",
				Help:      "Total number of rules learned at runtime",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_reloads_total",
				Help:      "Total number of rule reloads by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(rm.rules, rm.learnedTotal, rm.reloadsTotal)

	return rm
}

// SetRuleCount sets the current index size.
func (rm *RuleMetrics) SetRuleCount(n int) {
	rm.rules.Set(float64(n))
}

// RecordLearned records a rule learned at runtime.
func (rm *RuleMetrics) RecordLearned() {
	rm.learnedTotal.Inc()
}

// RecordReload records a reload attempt ("success" or "error").
func (rm *RuleMetrics) RecordReload(status string) {
	rm.reloadsTotal.WithLabelValues(status).Inc()
}
