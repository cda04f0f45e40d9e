package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "valid default",
			mutate: func(*Config) {},
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.Bot.Timeout = 0 },
			wantField: "bot.timeout",
		},
		{
			name:      "bad locale",
			mutate:    func(c *Config) { c.Bot.Locale = "not a locale!" },
			wantField: "bot.locale",
		},
		{
			name:      "no splitters",
			mutate:    func(c *Config) { c.Normalize.Splitters = nil },
			wantField: "normalize.splitters",
		},
		{
			name:      "empty splitter",
			mutate:    func(c *Config) { c.Normalize.Splitters = []string{".", ""} },
			wantField: "normalize.splitters[1]",
		},
		{
			name:      "negative that size",
			mutate:    func(c *Config) { c.Normalize.MaxThatSize = -1 },
			wantField: "normalize.max_that_size",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Session.Backend = "sqlite"
				c.Session.SQLitePath = ""
			},
			wantField: "session.sqlite_path",
		},
		{
			name: "unknown sqlite driver",
			mutate: func(c *Config) {
				c.Session.Backend = "sqlite"
				c.Session.SQLiteDriver = "postgres"
			},
			wantField: "session.sqlite_driver",
		},
		{
			name:      "negative ttl",
			mutate:    func(c *Config) { c.Session.IdleTTL = -time.Hour },
			wantField: "session.idle_ttl",
		},
		{
			name:      "blank rule path",
			mutate:    func(c *Config) { c.Rules.Paths = []string{" "} },
			wantField: "rules.paths[0]",
		},
		{
			name: "git token auth without token",
			mutate: func(c *Config) {
				c.Rules.Git.Repository = "https://example.com/rules.git"
				c.Rules.Git.Auth.Type = "token"
			},
			wantField: "rules.git.auth.token",
		},
		{
			name: "git poll interval too short",
			mutate: func(c *Config) {
				c.Rules.Git.Repository = "https://example.com/rules.git"
				c.Rules.Git.PollInterval = time.Millisecond
			},
			wantField: "rules.git.poll_interval",
		},
		{
			name:      "tracing without endpoint",
			mutate:    func(c *Config) { c.Telemetry.Tracing.Enabled = true },
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name:      "tracing ratio out of range",
			mutate:    func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "unsorted buckets",
			mutate:    func(c *Config) { c.Telemetry.Metrics.TurnDurationBuckets = []float64{1, 0.5} },
			wantField: "telemetry.metrics.turn_duration_buckets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "bot.timeout", Message: "bad"}}}
	if got := single.Error(); got != "configuration validation failed: bot.timeout: bad" {
		t.Errorf("unexpected message %q", got)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "x"},
		{Field: "b", Message: "y"},
	}}
	if got := multi.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "  - b: y") {
		t.Errorf("unexpected message %q", got)
	}
}
