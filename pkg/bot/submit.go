package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mercator-hq/parley/pkg/graph"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/telemetry/logging"
	"mercator-hq/parley/pkg/telemetry/metrics"
	"mercator-hq/parley/pkg/telemetry/tracing"
	"mercator-hq/parley/pkg/template"
)

// Submit evaluates raw as one turn of the session sessionID, creating the
// session if needed. It never fails: problems with single sentences are
// logged and reported on the Result. ctx carries logging and tracing
// values and bounds session store calls; evaluation itself is bounded
// only by the configured timeout.
func (b *Bot) Submit(ctx context.Context, raw, sessionID string) *Result {
	return b.Process(ctx, &Request{
		Raw:     raw,
		Session: b.session(ctx, sessionID),
	})
}

// Process evaluates req as one turn. Zero TurnID, Start and Budget are
// filled from the bot's clock and configuration; a nil Session is replaced
// by a transient one.
func (b *Bot) Process(ctx context.Context, req *Request) *Result {
	if req.TurnID == "" {
		req.TurnID = uuid.NewString()
	}
	if req.Start.IsZero() {
		req.Start = b.now()
	}
	if req.Budget == 0 {
		req.Budget = b.cfg.Bot.Timeout
	}
	if req.Session == nil {
		req.Session = session.New("", b.sessOpts)
	}

	sess := req.Session
	ctx = logging.WithTurnID(ctx, req.TurnID)
	ctx = logging.WithSession(ctx, sess.ID())

	ctx, span := b.tracer.Start(ctx, tracing.SpanTurn)
	defer span.End()
	tracing.SetTurnAttributes(span, sess.ID(), req.TurnID)

	end := sess.BeginTurn()
	defer end()

	res := &Result{TurnID: req.TurnID, SessionID: sess.ID()}

	if !b.cfg.Bot.AcceptingInput || !sess.Accepting() {
		res.Rejected = true
		res.Err = ErrInputRejected
		res.message = b.cfg.Bot.NotAcceptingMessage
		res.Duration = b.now().Sub(req.Start)
		b.logger.InfoContext(ctx, "input rejected", "input", req.Raw)
		b.metrics.RecordTurn(res.Outcome(), res.Duration)
		tracing.SetTurnOutcome(span, res.Outcome(), false)
		return res
	}

	for i, sentence := range b.norm.Sentences(req.Raw) {
		if req.TimedOut {
			break
		}
		sr := b.evalSentence(ctx, req, sentence, i, 0)
		res.Sentences = append(res.Sentences, sr)
		if sr.Output != "" {
			res.Outputs = append(res.Outputs, sr.Output)
		}
	}

	res.TimedOut = req.TimedOut
	if res.TimedOut && len(res.Outputs) == 0 {
		res.message = b.cfg.Bot.TimeoutMessage
	}
	res.Duration = b.now().Sub(req.Start)

	b.record(ctx, req, res)

	b.metrics.RecordTurn(res.Outcome(), res.Duration)
	tracing.SetTurnOutcome(span, res.Outcome(), res.TimedOut)
	b.logger.DebugContext(ctx, "turn complete",
		"sentences", len(res.Sentences),
		"outputs", len(res.Outputs),
		"duration", res.Duration,
		"timed_out", res.TimedOut,
	)
	return res
}

// record appends the turn to the session history and persists the session.
func (b *Bot) record(ctx context.Context, req *Request, res *Result) {
	var outputs []string
	for _, out := range res.Outputs {
		outputs = append(outputs, b.norm.Sentences(out)...)
	}

	req.Session.AddTurn(session.Turn{
		ID:      req.TurnID,
		Time:    req.Start,
		Inputs:  res.Inputs(),
		Outputs: outputs,
	})

	if err := b.store.Save(ctx, req.Session); err != nil {
		b.logger.ErrorContext(ctx, "failed to save session", "error", err)
	}
}

// reformulate runs text through the pipeline within req and joins the
// outputs of its sentences. Nested sentences do not enter the history.
func (b *Bot) reformulate(ctx context.Context, req *Request, text string, depth int) string {
	ctx, span := b.tracer.Start(ctx, tracing.SpanSrai)
	defer span.End()
	span.SetAttributes(tracing.SraiDepth(depth))

	b.metrics.RecordReformulation()

	var outputs []string
	for i, sentence := range b.norm.Sentences(text) {
		if req.TimedOut {
			break
		}
		sr := b.evalSentence(ctx, req, sentence, i, depth)
		if sr.Output != "" {
			outputs = append(outputs, sr.Output)
		}
	}
	return strings.Join(outputs, " ")
}

// evalSentence matches one sentence and evaluates the matched template.
func (b *Bot) evalSentence(ctx context.Context, req *Request, sentence string, index, depth int) SentenceResult {
	ctx, span := b.tracer.Start(ctx, tracing.SpanSentence)
	defer span.End()

	if depth == 0 {
		req.inputs = append(req.inputs, sentence)
	}

	sr := SentenceResult{Input: sentence}
	sess := req.Session

	path, ok := b.norm.Path(sentence, sess.LastOutput(), sess.Topic())
	if !ok {
		sr.Err = ErrEmptySentence
		b.metrics.RecordSentence(metrics.SentenceNoMatch)
		return sr
	}
	sr.Path = path
	tracing.SetSentenceAttributes(span, index, path.String())

	m, ok := b.graph.Load().Match(path)
	if !ok {
		sr.Err = ErrNoMatch
		b.metrics.RecordSentence(metrics.SentenceNoMatch)
		b.logger.DebugContext(ctx, "no match", "path", path.String())
		return sr
	}
	sr.Match = m
	tracing.SetMatchAttributes(span, m.Rule.Pattern, m.Rule.Source)

	root, err := m.Rule.Compiled()
	if err != nil {
		sr.Err = &TemplateError{Rule: m.Rule.String(), Source: m.Rule.Source, Cause: err}
		b.metrics.RecordSentence(metrics.SentenceMalformed)
		tracing.SetError(span, sr.Err)
		b.logger.ErrorContext(ctx, "malformed template",
			"rule", m.Rule.String(),
			"source", m.Rule.Source,
			"error", err,
		)
		return sr
	}

	b.logger.DebugContext(ctx, "matched",
		"path", path.String(),
		"rule", m.Rule.String(),
		"source", m.Rule.Source,
	)

	out, err := b.run(ctx, req, m, root, depth)
	sr.Output = strings.Join(strings.Fields(out), " ")

	switch {
	case err != nil:
		sr.Err = &TemplateError{Rule: m.Rule.String(), Source: m.Rule.Source, Cause: err}
		b.metrics.RecordSentence(metrics.SentenceMalformed)
		tracing.SetError(span, sr.Err)
		b.logger.ErrorContext(ctx, "template evaluation failed",
			"rule", m.Rule.String(),
			"error", err,
		)
	case req.TimedOut:
		elapsed := b.now().Sub(req.Start)
		sr.Err = &TimeoutError{Budget: req.Budget, Elapsed: elapsed}
		b.metrics.RecordSentence(metrics.SentenceAborted)
		tracing.SetError(span, sr.Err)
		b.logger.WarnContext(ctx, "request timed out",
			"input", req.Raw,
			"rule", m.Rule.String(),
			"elapsed", elapsed,
			"budget", req.Budget,
		)
	default:
		b.metrics.RecordSentence(metrics.SentenceMatched)
	}
	return sr
}

// run evaluates a template, turning a handler panic into an error.
func (b *Bot) run(ctx context.Context, req *Request, m *graph.MatchContext, root *template.Node, depth int) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = "", fmt.Errorf("handler panic: %v", p)
		}
	}()

	c := &Context{ctx: ctx, bot: b, req: req, match: m, depth: depth}
	return c.Eval(root), nil
}
