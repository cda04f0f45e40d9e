// Package telemetry groups the observability packages used by the engine.
//
// # Components
//
//   - logging: slog setup, batched output and turn/session context fields
//   - metrics: Prometheus counters and histograms for turns, rules and sessions
//   - tracing: OpenTelemetry spans for turns, sentences and reformulations
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, err := logging.New(logging.Config{Level: cfg.Telemetry.Logging.Level})
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//
//	b, err := bot.New(cfg, bot.Options{
//		Logger:  logger.Slog(),
//		Metrics: collector,
//		Tracer:  tracer,
//	})
//
// Every collaborator is optional. A nil *metrics.Collector records nothing
// and a nil *tracing.Tracer starts no-op spans.
package telemetry
