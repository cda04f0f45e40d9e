package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "json", config: Config{Enabled: true, Level: "info", Format: "json"}},
		{name: "text", config: Config{Enabled: true, Level: "debug", Format: "text"}},
		{name: "defaults", config: Config{}},
		{name: "invalid level", config: Config{Level: "loud"}, wantErr: true},
		{name: "invalid format", config: Config{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger.Slog() == nil {
				t.Fatal("expected non-nil slog logger")
			}
		})
	}
}

func TestNew_DisabledRaisesLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Enabled: false, Level: "debug", BufferSize: 10, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().Info("hidden")
	logger.Slog().Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written while logging disabled: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record should be written immediately, got %q", out)
	}
	if logger.Level() != slog.LevelWarn {
		t.Errorf("expected effective level warn, got %v", logger.Level())
	}
}

func TestLogBuffer_FlushesAtCapacity(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Enabled: true, Level: "info", BufferSize: 3, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().Info("one")
	logger.Slog().Info("two")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written before capacity, got %q", buf.String())
	}
	if got := logger.Buffer().Pending(); got != 2 {
		t.Errorf("expected 2 pending records, got %d", got)
	}

	logger.Slog().Info("three")
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("expected 3 lines after flush, got %d", got)
	}
	if logger.Buffer().FlushCount() != 1 {
		t.Errorf("expected 1 flush, got %d", logger.Buffer().FlushCount())
	}

	logger.Slog().Info("four")
	if err := logger.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "four") {
		t.Error("expected Shutdown to flush remaining records")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestLogBuffer_FailedFlush(t *testing.T) {
	lb := NewLogBuffer(failingWriter{}, 2)
	_, _ = lb.Write([]byte("a\n"))
	if _, err := lb.Write([]byte("b\n")); err == nil {
		t.Fatal("expected flush error")
	}
	if lb.FailedCount() != 1 {
		t.Errorf("expected 1 failed flush, got %d", lb.FailedCount())
	}
	if lb.Pending() != 0 {
		t.Errorf("expected pending cleared after flush attempt, got %d", lb.Pending())
	}
}

func TestContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Enabled: true, Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithSession(WithTurnID(context.Background(), "turn-1"), "alice")
	logger.Slog().InfoContext(ctx, "matched", "sentence", 0)

	out := buf.String()
	if !strings.Contains(out, `"turn_id":"turn-1"`) {
		t.Errorf("expected turn_id in %q", out)
	}
	if !strings.Contains(out, `"session_id":"alice"`) {
		t.Errorf("expected session_id in %q", out)
	}

	if GetTurnID(context.Background()) != "" || GetSession(context.Background()) != "" {
		t.Error("expected empty values from bare context")
	}
}

func TestContextHandler_WithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Enabled: true, Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().With("component", "graph").WithGroup("g").InfoContext(
		WithTurnID(context.Background(), "t9"), "insert", "size", 3)

	out := buf.String()
	if !strings.Contains(out, "component=graph") || !strings.Contains(out, "t9") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestOr(t *testing.T) {
	if Or(nil) != slog.Default() {
		t.Error("expected slog.Default for nil")
	}
	l := Discard()
	if Or(l) != l {
		t.Error("expected the given logger back")
	}
}
