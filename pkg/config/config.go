package config

import "time"

// Config is the root configuration structure for parley.
// It contains the bot settings consulted on every turn, normalization rules,
// session storage, rule sources, substitution tables, and telemetry.
type Config struct {
	// Bot contains turn-level settings: input acceptance, time budget,
	// locale, and the bot's own properties.
	Bot BotConfig `yaml:"bot"`

	// Normalize controls how raw input is split into sentences and reduced
	// to lookup paths.
	Normalize NormalizeConfig `yaml:"normalize"`

	// Session contains session store configuration including backend
	// selection, variable defaults, history size, and pruning.
	Session SessionConfig `yaml:"session"`

	// Rules contains the location of rule files and hot-reload settings.
	Rules RulesConfig `yaml:"rules"`

	// Substitutions points at an optional file of substitution tables.
	Substitutions SubstitutionsConfig `yaml:"substitutions"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BotConfig contains the settings consulted by every turn.
type BotConfig struct {
	// AcceptingInput controls whether turns are evaluated at all.
	// When false every turn returns NotAcceptingMessage.
	// Default: true
	AcceptingInput bool `yaml:"accepting_input"`

	// NotAcceptingMessage is returned when AcceptingInput is false.
	// Default: "This bot is currently set to not accept user input."
	NotAcceptingMessage string `yaml:"not_accepting_message"`

	// Timeout is the time budget for a single turn, shared by all nested
	// reformulations within it.
	// Default: 2s
	Timeout time.Duration `yaml:"timeout"`

	// TimeoutMessage is returned when a turn times out before any sentence
	// produced output.
	// Default: "ERROR: The request has timed out."
	TimeoutMessage string `yaml:"timeout_message"`

	// Locale is the BCP 47 tag used for case folding.
	// Default: "en-US"
	Locale string `yaml:"locale"`

	// Version is reported by the version element. Empty means the build version.
	Version string `yaml:"version"`

	// Properties are the bot's own named properties (name, gender, ...).
	// Keys missing here fall back to the built-in defaults.
	Properties map[string]string `yaml:"properties"`
}

// NormalizeConfig controls sentence splitting and path construction.
type NormalizeConfig struct {
	// StripPattern is a regular expression matching characters outside the
	// allow-set. Matches are replaced by a space.
	// Default: "[^0-9a-zA-Z]"
	StripPattern string `yaml:"strip_pattern"`

	// Splitters are the sentence delimiters.
	// Default: [".", "!", "?", ";"]
	Splitters []string `yaml:"splitters"`

	// MaxThatSize is the longest that-context, in characters, kept in a
	// path. Longer contexts collapse to a single wildcard.
	// Default: 256
	MaxThatSize int `yaml:"max_that_size"`
}

// SessionConfig contains session store configuration.
type SessionConfig struct {
	// Backend selects the session store.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file used by the sqlite backend.
	// Default: "data/sessions.db"
	SQLitePath string `yaml:"sqlite_path"`

	// SQLiteDriver selects the database/sql driver for the sqlite backend.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	SQLiteDriver string `yaml:"sqlite_driver"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// DefaultPredicates are returned for variables a session never set.
	// Default: {"topic": "*"}
	DefaultPredicates map[string]string `yaml:"default_predicates"`

	// UnsetValue is returned for variables that are neither set nor defaulted.
	// Default: ""
	UnsetValue string `yaml:"unset_value"`

	// HistorySize is the number of turns kept per session.
	// Default: 20
	HistorySize int `yaml:"history_size"`

	// IdleTTL is how long a session may stay idle before pruning removes it.
	// Zero disables pruning.
	// Default: 720h
	IdleTTL time.Duration `yaml:"idle_ttl"`

	// PruneSchedule is a cron expression for idle-session pruning.
	// Example: "0 4 * * *" (daily at 4 AM)
	// Default: "0 4 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// RulesConfig contains rule source configuration.
type RulesConfig struct {
	// Paths are rule files or directories of .yaml/.yml rule files.
	// Default: ["rules"]
	Paths []string `yaml:"paths"`

	// Watch enables hot reload when rule files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a reload is triggered.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// Git loads rules from a Git repository instead of Paths when
	// Repository is set.
	Git GitRulesConfig `yaml:"git"`
}

// GitRulesConfig configures the Git rule source.
type GitRulesConfig struct {
	// Repository is the clone URL or a local repository path.
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path is the rule directory inside the repository.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: "data/rules-repo"
	LocalPath string `yaml:"local_path"`

	// Depth limits clone history. Zero clones everything.
	Depth int `yaml:"depth"`

	// CleanOnStart removes an existing clone before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`

	// PollInterval is how often the remote is checked when watching.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds each clone or pull.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Auth contains credentials for private repositories.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains Git credentials.
type GitAuthConfig struct {
	// Type selects the method.
	// Options: "none", "token", "ssh"
	// Default: "none"
	Type string `yaml:"type"`

	// Token is an access token for HTTPS remotes. Prefer PARLEY_RULES_GIT_TOKEN.
	Token string `yaml:"token"`

	// SSHKeyPath is a private key file for SSH remotes.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase unlocks an encrypted key.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// SubstitutionsConfig points at substitution table definitions.
type SubstitutionsConfig struct {
	// File is a YAML file with substitution, person, person2 and gender
	// tables. Tables present in the file replace the built-in ones.
	File string `yaml:"file"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Enabled turns on full logging. When false only warnings and errors
	// are written.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// BufferSize is the number of records held in memory before they are
	// flushed to the output.
	// Default: 64
	BufferSize int `yaml:"buffer_size"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "parley"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// ListenAddress serves the metrics endpoint when set (e.g. "127.0.0.1:9090").
	// Default: "" (not served)
	ListenAddress string `yaml:"listen_address"`

	// TurnDurationBuckets defines histogram buckets for turn duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5]
	TurnDurationBuckets []float64 `yaml:"turn_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether turns are traced.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of turns to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "parley"
	ServiceName string `yaml:"service_name"`
}
