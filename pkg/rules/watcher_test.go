package rules

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaultWatcherConfig(t *testing.T) {
	cfg := DefaultWatcherConfig()
	if cfg.DebounceInterval != 100*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 100ms", cfg.DebounceInterval)
	}
	if !cfg.SkipHidden {
		t.Error("SkipHidden = false, want true")
	}
}

func TestWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "greetings.yaml")
	writeRuleFile(t, file, "rules: []\n")

	cfg := DefaultWatcherConfig()
	cfg.Paths = []string{file}
	cfg.DebounceInterval = 20 * time.Millisecond

	w, err := NewWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	changed := make(chan string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(path string) { changed <- path }) }()

	time.Sleep(50 * time.Millisecond)

	// A sibling file in the same directory must not trigger.
	writeRuleFile(t, filepath.Join(dir, "other.yaml"), "rules: []\n")
	writeRuleFile(t, file, "rules:\n  - pattern: HI\n    template: hi\n")

	select {
	case path := <-changed:
		if filepath.Clean(path) != filepath.Clean(file) {
			t.Errorf("expected change on %q, got %q", file, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported after file modification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileSource_Watch(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, filepath.Join(dir, "a.yaml"), "rules: []\n")

	src := NewFileSource([]string{dir}, 20*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := src.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	writeRuleFile(t, filepath.Join(dir, "b.yaml"), "rules: []\n")

	select {
	case ev := <-events:
		if ev.Type != EventChanged {
			t.Errorf("expected changed event, got %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after creating a rule file")
	}

	cancel()
	for range events {
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call after burst, got %d", got)
	}

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected pending call cancelled by Stop, got %d calls", got)
	}

	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected Trigger after Stop to be ignored, got %d calls", got)
	}
}

func TestWatcher_MissingPath(t *testing.T) {
	cfg := DefaultWatcherConfig()
	cfg.Paths = []string{filepath.Join(t.TempDir(), "missing")}

	w, err := NewWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Watch(context.Background(), func(string) {}); err == nil {
		t.Error("expected error for missing path")
	}
}
