package metrics

import (
	"time"

	"mercator-hq/parley/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the entry point for all Prometheus metrics in parley.
// It registers every metric on its own registry and exposes one method per
// event. All methods are safe on a nil *Collector and on a disabled one, so
// components can record unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	turnMetrics    *TurnMetrics
	ruleMetrics    *RuleMetrics
	sessionMetrics *SessionMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "parley"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.TurnDurationBuckets) == 0 {
		cfg.TurnDurationBuckets = append([]float64(nil), config.DefaultTurnDurationBuckets...)
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		turnMetrics:    NewTurnMetrics(cfg, registry),
		ruleMetrics:    NewRuleMetrics(cfg, registry),
		sessionMetrics: NewSessionMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordTurn records a completed turn.
//
// Parameters:
//   - outcome: OutcomeOK, OutcomeEmpty, OutcomeTimeout or OutcomeRejected
//   - duration: Wall time of the turn
func (c *Collector) RecordTurn(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.turnMetrics.RecordTurn(outcome, duration)
}

// RecordSentence records the result of evaluating one sentence.
func (c *Collector) RecordSentence(result string) {
	if !c.enabled() {
		return
	}
	c.turnMetrics.RecordSentence(result)
}

// RecordReformulation records a nested pass through the turn pipeline.
func (c *Collector) RecordReformulation() {
	if !c.enabled() {
		return
	}
	c.turnMetrics.RecordReformulation()
}

// SetRuleCount records the number of rules in the pattern index.
func (c *Collector) SetRuleCount(n int) {
	if !c.enabled() {
		return
	}
	c.ruleMetrics.SetRuleCount(n)
}

// RecordRuleLearned records a rule inserted at runtime.
func (c *Collector) RecordRuleLearned() {
	if !c.enabled() {
		return
	}
	c.ruleMetrics.RecordLearned()
}

// RecordReload records a rule reload with status "success" or "error".
func (c *Collector) RecordReload(status string) {
	if !c.enabled() {
		return
	}
	c.ruleMetrics.RecordReload(status)
}

// RecordSessionCreated records a new session.
func (c *Collector) RecordSessionCreated() {
	if !c.enabled() {
		return
	}
	c.sessionMetrics.RecordCreated()
}

// RecordSessionsPruned records pruned sessions.
func (c *Collector) RecordSessionsPruned(n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.sessionMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
