package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanTurn     = "parley.turn"
	SpanSentence = "parley.sentence"
	SpanSrai     = "parley.srai"
	SpanReload   = "parley.reload"
)

// Attribute keys use the "parley.*" namespace.
const (
	AttrSession  = "parley.session"
	AttrTurnID   = "parley.turn_id"
	AttrOutcome  = "parley.outcome"
	AttrTimedOut = "parley.timed_out"

	AttrSentenceIndex  = "parley.sentence.index"
	AttrSentenceResult = "parley.sentence.result"
	AttrPath           = "parley.path"

	AttrRulePattern = "parley.rule.pattern"
	AttrRuleSource  = "parley.rule.source"
	AttrRuleCount   = "parley.rule.count"

	AttrSraiDepth = "parley.srai.depth"

	AttrErrorMessage = "error.message"
)

// SraiDepth returns the reformulation depth attribute.
func SraiDepth(depth int) attribute.KeyValue {
	return attribute.Int(AttrSraiDepth, depth)
}

// SetTurnAttributes records the session and turn on a span.
func SetTurnAttributes(span trace.Span, sessionID, turnID string) {
	span.SetAttributes(
		attribute.String(AttrSession, sessionID),
		attribute.String(AttrTurnID, turnID),
	)
}

// SetTurnOutcome records how a turn ended.
func SetTurnOutcome(span trace.Span, outcome string, timedOut bool) {
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Bool(AttrTimedOut, timedOut),
	)
}

// SetSentenceAttributes records a sentence's position and match path.
func SetSentenceAttributes(span trace.Span, index int, path string) {
	span.SetAttributes(
		attribute.Int(AttrSentenceIndex, index),
		attribute.String(AttrPath, path),
	)
}

// SetMatchAttributes records the rule a sentence matched.
func SetMatchAttributes(span trace.Span, pattern, source string) {
	span.SetAttributes(
		attribute.String(AttrRulePattern, pattern),
		attribute.String(AttrRuleSource, source),
	)
}
