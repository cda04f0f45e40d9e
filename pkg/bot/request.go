package bot

import (
	"strings"
	"time"

	"mercator-hq/parley/pkg/graph"
	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/telemetry/metrics"
)

// Request is one turn in flight. Nested reformulations share the same
// Request, so they draw on the same time budget and timed-out flag.
type Request struct {
	// Raw is the text the user submitted.
	Raw string

	// Session is the user's session.
	Session *session.Session

	// Start is when the turn began.
	Start time.Time

	// Budget is the turn's time budget. Zero means unlimited.
	Budget time.Duration

	// TimedOut is set once any evaluation step finds the budget spent.
	TimedOut bool

	// OverrideTimeout disables the budget check for this turn.
	OverrideTimeout bool

	// TurnID identifies the turn in logs, traces and history.
	TurnID string

	// inputs are the user's input sentences of this turn processed so far.
	inputs []string
}

// expired reports whether the budget is spent at now.
func (r *Request) expired(now time.Time) bool {
	if r.OverrideTimeout || r.Budget <= 0 {
		return false
	}
	return now.Sub(r.Start) > r.Budget
}

// SentenceResult is the outcome of one input sentence.
type SentenceResult struct {
	// Input is the raw sentence.
	Input string

	// Path is the lookup path built for the sentence.
	Path normalize.Path

	// Match is the match, or nil when nothing matched.
	Match *graph.MatchContext

	// Output is the evaluated template text, possibly partial on timeout.
	Output string

	// Err is ErrNoMatch, a *TemplateError, a *TimeoutError, or nil.
	Err error
}

// Result is the outcome of a turn.
type Result struct {
	// TurnID identifies the turn.
	TurnID string

	// SessionID is the session the turn ran in.
	SessionID string

	// Sentences holds one entry per evaluated input sentence, in order.
	Sentences []SentenceResult

	// Outputs are the non-empty sentence outputs, in order.
	Outputs []string

	// Duration is the wall time of the turn.
	Duration time.Duration

	// TimedOut reports whether the budget ran out.
	TimedOut bool

	// Rejected reports whether the turn was refused without evaluation.
	Rejected bool

	// Err is ErrInputRejected for rejected turns and nil otherwise.
	// Per-sentence failures are reported on Sentences.
	Err error

	// message replaces the output for rejected and empty timed-out turns.
	message string
}

// Output returns the reply text: the sentence outputs joined by a space.
func (r *Result) Output() string {
	if len(r.Outputs) == 0 {
		return r.message
	}
	return strings.Join(r.Outputs, " ")
}

// Inputs returns the input sentences in order.
func (r *Result) Inputs() []string {
	out := make([]string, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.Input
	}
	return out
}

// Matches returns the per-sentence matches; entries are nil where no rule
// matched.
func (r *Result) Matches() []*graph.MatchContext {
	out := make([]*graph.MatchContext, len(r.Sentences))
	for i, s := range r.Sentences {
		out[i] = s.Match
	}
	return out
}

// Outcome classifies the turn for metrics.
func (r *Result) Outcome() string {
	switch {
	case r.Rejected:
		return metrics.OutcomeRejected
	case r.TimedOut:
		return metrics.OutcomeTimeout
	case len(r.Outputs) == 0:
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeOK
	}
}
