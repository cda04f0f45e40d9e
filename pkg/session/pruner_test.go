package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPruner_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testOptions())
	store.GetOrCreate(ctx, "a")
	store.GetOrCreate(ctx, "b")

	var reported int64
	p := NewPruner(store, PrunerConfig{IdleTTL: time.Hour}, nil, func(n int64) { reported = n })
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	n, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 || reported != 2 {
		t.Errorf("expected 2 pruned and reported, got %d and %d", n, reported)
	}

	disabled := NewPruner(store, PrunerConfig{}, nil, nil)
	if n, _ := disabled.Prune(ctx); n != 0 {
		t.Errorf("expected zero TTL to disable pruning, got %d", n)
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		config      PrunerConfig
		wantRunning bool
		wantError   bool
	}{
		{"valid daily schedule", PrunerConfig{IdleTTL: time.Hour, Schedule: "0 4 * * *"}, true, false},
		{"empty schedule", PrunerConfig{IdleTTL: time.Hour}, false, false},
		{"zero ttl", PrunerConfig{Schedule: "0 4 * * *"}, false, false},
		{"invalid schedule", PrunerConfig{IdleTTL: time.Hour, Schedule: "invalid cron"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPruner(NewMemoryStore(testOptions()), tt.config, nil, nil)
			s := NewScheduler(p)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning && s.NextRun() == nil {
				t.Error("NextRun() returned nil for running scheduler")
			}

			s.Stop()
			if s.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}
