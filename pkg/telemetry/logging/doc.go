// Package logging builds the log/slog logger used across parley.
//
// # Overview
//
// New wraps a JSON or text slog handler with:
//   - a LogBuffer that batches records and writes them every BufferSize
//     records (and on Shutdown)
//   - a ContextHandler that copies turn_id and session_id from the context
//     into every record logged with a *Context method
//
// When Config.Enabled is false only warnings and errors are written, and
// they are written immediately.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Enabled:    true,
//	    Level:      "info",
//	    Format:     "json",
//	    BufferSize: 64,
//	})
//	defer logger.Shutdown()
//
//	ctx = logging.WithTurnID(ctx, turnID)
//	logger.Slog().InfoContext(ctx, "turn complete", "sentences", 2)
package logging
