package logging

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in key=value text format.
	FormatText LogFormat = "text"
)

// Config contains configuration for the Logger.
type Config struct {
	// Enabled turns on full logging. When false the level is raised to warn
	// and records bypass the buffer.
	Enabled bool

	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// BufferSize is the number of records held before a flush.
	// Zero or one writes every record through immediately.
	BufferSize int

	// Writer is the output writer (defaults to os.Stderr)
	Writer io.Writer
}

// Logger owns the slog handler chain and the log buffer behind it.
// Components receive the *slog.Logger returned by Slog.
type Logger struct {
	slog   *slog.Logger
	buffer *LogBuffer
	level  slog.Level
	format LogFormat
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	bufferSize := cfg.BufferSize
	if !cfg.Enabled {
		if level < slog.LevelWarn {
			level = slog.LevelWarn
		}
		bufferSize = 0
	}

	buffer := NewLogBuffer(writer, bufferSize)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(buffer, opts)
	default:
		handler = slog.NewTextHandler(buffer, opts)
	}

	return &Logger{
		slog:   slog.New(NewContextHandler(handler)),
		buffer: buffer,
		level:  level,
		format: format,
	}, nil
}

// Slog returns the structured logger to hand to components.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Level returns the effective minimum level.
func (l *Logger) Level() slog.Level {
	return l.level
}

// Buffer returns the log buffer behind the handler.
func (l *Logger) Buffer() *LogBuffer {
	return l.buffer
}

// Shutdown flushes any buffered records.
func (l *Logger) Shutdown() error {
	return l.buffer.Flush()
}

// LogBuffer collects formatted records and writes them to the underlying
// writer in batches of maxSize. Records are complete lines because slog
// handlers issue exactly one Write per record.
type LogBuffer struct {
	mu      sync.Mutex
	writer  io.Writer
	maxSize int
	pending [][]byte
	flushes atomic.Int64
	failed  atomic.Int64
}

// NewLogBuffer creates a buffer that flushes every maxSize records.
func NewLogBuffer(w io.Writer, maxSize int) *LogBuffer {
	return &LogBuffer{
		writer:  w,
		maxSize: maxSize,
	}
}

// Write implements io.Writer. It is called by slog handlers once per record.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	if lb.maxSize <= 1 {
		lb.mu.Lock()
		defer lb.mu.Unlock()
		return lb.writer.Write(p)
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.pending = append(lb.pending, bytes.Clone(p))
	if len(lb.pending) >= lb.maxSize {
		if err := lb.flushLocked(); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Flush writes all pending records to the underlying writer.
func (lb *LogBuffer) Flush() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.flushLocked()
}

func (lb *LogBuffer) flushLocked() error {
	if len(lb.pending) == 0 {
		return nil
	}

	batch := bytes.Join(lb.pending, nil)
	lb.pending = lb.pending[:0]
	lb.flushes.Add(1)

	if _, err := lb.writer.Write(batch); err != nil {
		lb.failed.Add(1)
		return fmt.Errorf("failed to flush log buffer: %w", err)
	}
	return nil
}

// Pending returns the number of records waiting for a flush.
func (lb *LogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.pending)
}

// FlushCount returns the number of batches written so far.
func (lb *LogBuffer) FlushCount() int64 {
	return lb.flushes.Load()
}

// FailedCount returns the number of batches the writer rejected.
func (lb *LogBuffer) FailedCount() int64 {
	return lb.failed.Load()
}

// Discard returns a logger that drops everything. Tests and library
// defaults use it when no logger is supplied.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Or returns logger when it is non-nil, otherwise slog.Default().
func Or(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "text", "TEXT", "":
		return FormatText, nil
	case "json", "JSON":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

