package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	cause := errors.New("bad yaml")
	err := NewConfigError("bot.timeout", "must be positive", cause)

	expected := "config error in bot.timeout: must be positive"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should reach the cause")
	}

	noField := NewConfigError("", "failed to load", nil)
	if noField.Error() != "config error: failed to load" {
		t.Errorf("Error() = %q", noField.Error())
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("chat", underlyingErr)

	expected := "command chat failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitError},
		{"usage", NewUsageError("missing %s", "--message"), ExitUsage},
		{"config", NewConfigError("", "bad", nil), ExitConfig},
		{"wrapped config", fmt.Errorf("startup: %w", NewConfigError("x", "y", nil)), ExitConfig},
		{"command wrapping usage", NewCommandError("lint", NewUsageError("no paths")), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
