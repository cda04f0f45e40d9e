package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of Default, then defaults are re-applied to
// fields the file blanked, and the result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention PARLEY_SECTION_FIELD (e.g., PARLEY_BOT_TIMEOUT).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from Default.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format PARLEY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Bot overrides
	if val := os.Getenv("PARLEY_BOT_ACCEPTING_INPUT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Bot.AcceptingInput = b
		}
	}
	if val := os.Getenv("PARLEY_BOT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Bot.Timeout = d
		}
	}
	if val := os.Getenv("PARLEY_BOT_TIMEOUT_MESSAGE"); val != "" {
		cfg.Bot.TimeoutMessage = val
	}
	if val := os.Getenv("PARLEY_BOT_LOCALE"); val != "" {
		cfg.Bot.Locale = val
	}

	// Normalize overrides
	if val := os.Getenv("PARLEY_NORMALIZE_STRIP_PATTERN"); val != "" {
		cfg.Normalize.StripPattern = val
	}
	if val := os.Getenv("PARLEY_NORMALIZE_MAX_THAT_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Normalize.MaxThatSize = i
		}
	}

	// Session overrides
	if val := os.Getenv("PARLEY_SESSION_BACKEND"); val != "" {
		cfg.Session.Backend = val
	}
	if val := os.Getenv("PARLEY_SESSION_SQLITE_PATH"); val != "" {
		cfg.Session.SQLitePath = val
	}
	if val := os.Getenv("PARLEY_SESSION_SQLITE_DRIVER"); val != "" {
		cfg.Session.SQLiteDriver = val
	}
	if val := os.Getenv("PARLEY_SESSION_HISTORY_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Session.HistorySize = i
		}
	}
	if val := os.Getenv("PARLEY_SESSION_IDLE_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Session.IdleTTL = d
		}
	}

	// Rules overrides
	if val := os.Getenv("PARLEY_RULES_PATHS"); val != "" {
		cfg.Rules.Paths = splitList(val)
	}
	if val := os.Getenv("PARLEY_RULES_GIT_REPOSITORY"); val != "" {
		cfg.Rules.Git.Repository = val
	}
	if val := os.Getenv("PARLEY_RULES_GIT_TOKEN"); val != "" {
		cfg.Rules.Git.Auth.Token = val
	}
	if val := os.Getenv("PARLEY_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	if val := os.Getenv("PARLEY_SUBSTITUTIONS_FILE"); val != "" {
		cfg.Substitutions.File = val
	}

	// Telemetry overrides
	if val := os.Getenv("PARLEY_TELEMETRY_LOGGING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.Enabled = b
		}
	}
	if val := os.Getenv("PARLEY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PARLEY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PARLEY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PARLEY_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
	if val := os.Getenv("PARLEY_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("PARLEY_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// splitList splits a comma-separated environment value, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
