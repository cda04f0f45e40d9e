package metrics

import (
	"time"

	"mercator-hq/parley/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

// Sentence results.
const (
	SentenceMatched   = "matched"
	SentenceNoMatch   = "no_match"
	SentenceMalformed = "malformed"
	SentenceAborted   = "aborted"
)

// TurnMetrics tracks metrics related to turn evaluation.
//
// Metrics:
//   - parley_engine_turns_total: Turns by outcome (ok, empty, timeout, rejected)
//   - parley_engine_turn_duration_seconds: Turn duration
//   - parley_engine_sentences_total: Sentences by result (matched, no_match, malformed, aborted)
//   - parley_engine_reformulations_total: Nested reformulations
type TurnMetrics struct {
	turnsTotal          *prometheus.CounterVec
	turnDuration        prometheus.Histogram
	sentencesTotal      *prometheus.CounterVec
	reformulationsTotal prometheus.Counter
}

// NewTurnMetrics creates and registers turn metrics with the provided registry.
func NewTurnMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TurnMetrics {
	tm := &TurnMetrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turns_total",
				Help:      "Total number of turns by outcome",
			},
			[]string{"outcome"},
		),

		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turn_duration_seconds",
				Help:      "Duration of turn evaluation in seconds",
				Buckets:   cfg.TurnDurationBuckets,
			},
		),

		sentencesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sentences_total",
				Help:      "Total number of evaluated sentences by result",
			},
			[]string{"result"},
		),

		reformulationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reformulations_total",
				Help:      "Total number of nested reformulations",
			},
		),
	}

	registry.MustRegister(
		tm.turnsTotal,
		tm.turnDuration,
		tm.sentencesTotal,
		tm.reformulationsTotal,
	)

	return tm
}

// RecordTurn records a completed turn.
func (tm *TurnMetrics) RecordTurn(outcome string, duration time.Duration) {
	tm.turnsTotal.WithLabelValues(outcome).Inc()
	tm.turnDuration.Observe(duration.Seconds())
}

// RecordSentence records the result of one sentence.
func (tm *TurnMetrics) RecordSentence(result string) {
	tm.sentencesTotal.WithLabelValues(result).Inc()
}

// RecordReformulation records a nested reformulation.
func (tm *TurnMetrics) RecordReformulation() {
	tm.reformulationsTotal.Inc()
}
