package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "bot.timeout").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateBot(&cfg.Bot)...)
	errs = append(errs, validateNormalize(&cfg.Normalize)...)
	errs = append(errs, validateSession(&cfg.Session)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateBot validates bot configuration.
func validateBot(cfg *BotConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "bot.timeout",
			Message: "timeout must be positive",
		})
	}

	if _, err := language.Parse(cfg.Locale); err != nil {
		errs = append(errs, FieldError{
			Field:   "bot.locale",
			Message: fmt.Sprintf("invalid locale %q: %v", cfg.Locale, err),
		})
	}

	return errs
}

// validateNormalize validates normalization configuration.
func validateNormalize(cfg *NormalizeConfig) []FieldError {
	var errs []FieldError

	if _, err := regexp.Compile(cfg.StripPattern); err != nil {
		errs = append(errs, FieldError{
			Field:   "normalize.strip_pattern",
			Message: fmt.Sprintf("invalid regular expression: %v", err),
		})
	}

	if len(cfg.Splitters) == 0 {
		errs = append(errs, FieldError{
			Field:   "normalize.splitters",
			Message: "at least one sentence splitter is required",
		})
	}
	for i, s := range cfg.Splitters {
		if s == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("normalize.splitters[%d]", i),
				Message: "splitter must not be empty",
			})
		}
	}

	if cfg.MaxThatSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "normalize.max_that_size",
			Message: "max that size must be positive",
		})
	}

	return errs
}

// validateSession validates session configuration.
func validateSession(cfg *SessionConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, FieldError{
				Field:   "session.sqlite_path",
				Message: "sqlite path is required when backend is sqlite",
			})
		}
		if cfg.SQLiteDriver != "sqlite" && cfg.SQLiteDriver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "session.sqlite_driver",
				Message: fmt.Sprintf("unknown driver %q (must be sqlite or sqlite3)", cfg.SQLiteDriver),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "session.backend",
			Message: fmt.Sprintf("unknown backend %q (must be memory or sqlite)", cfg.Backend),
		})
	}

	if cfg.HistorySize < 0 {
		errs = append(errs, FieldError{
			Field:   "session.history_size",
			Message: "history size must be non-negative",
		})
	}
	if cfg.IdleTTL < 0 {
		errs = append(errs, FieldError{
			Field:   "session.idle_ttl",
			Message: "idle ttl must be non-negative",
		})
	}

	return errs
}

// validateRules validates rule source configuration.
func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	for i, p := range cfg.Paths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rules.paths[%d]", i),
				Message: "rule path must not be empty",
			})
		}
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "rules.debounce",
			Message: "debounce must be non-negative",
		})
	}

	if cfg.Git.Repository != "" {
		errs = append(errs, validateGit(&cfg.Git)...)
	}

	return errs
}

// validateGit validates the Git rule source.
func validateGit(cfg *GitRulesConfig) []FieldError {
	var errs []FieldError

	if cfg.Branch == "" {
		errs = append(errs, FieldError{Field: "rules.git.branch", Message: "branch is required"})
	}
	if cfg.Depth < 0 {
		errs = append(errs, FieldError{Field: "rules.git.depth", Message: "depth must be non-negative"})
	}
	if cfg.PollInterval < time.Second {
		errs = append(errs, FieldError{Field: "rules.git.poll_interval", Message: "poll interval must be at least 1s"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "rules.git.timeout", Message: "timeout must be positive"})
	}

	switch cfg.Auth.Type {
	case "none", "":
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{Field: "rules.git.auth.token", Message: "token auth requires a token"})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{Field: "rules.git.auth.ssh_key_path", Message: "ssh auth requires a key path"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "rules.git.auth.type",
			Message: fmt.Sprintf("unknown auth type %q (must be none, token or ssh)", cfg.Auth.Type),
		})
	}

	return errs
}

// validateTelemetry validates logging, metrics and tracing configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown log format %q", cfg.Logging.Format),
		})
	}

	if cfg.Logging.BufferSize < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.buffer_size",
			Message: "buffer size must be non-negative",
		})
	}

	if cfg.Metrics.Path != "" && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	for i := 1; i < len(cfg.Metrics.TurnDurationBuckets); i++ {
		if cfg.Metrics.TurnDurationBuckets[i] <= cfg.Metrics.TurnDurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.turn_duration_buckets",
				Message: "buckets must be strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q (must be always, never or ratio)", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
