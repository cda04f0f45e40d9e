// Package tracing provides OpenTelemetry tracing for conversation turns.
//
// Each turn gets a parley.turn span with one parley.sentence child per
// input sentence. Reformulations through srai add parley.srai spans under
// the sentence that triggered them, and rule reloads are traced as
// parley.reload.
//
// Spans are exported over OTLP/gRPC. Sampling is parent-based with one of
// three root strategies:
//   - always: sample every turn
//   - never: sample nothing
//   - ratio: sample a fraction of turns by trace ID
//
// Configuration:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// A nil or disabled *Tracer is safe to use and produces noop spans.
package tracing
