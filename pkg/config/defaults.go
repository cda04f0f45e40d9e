package config

import "time"

// Default values for configuration fields.
const (
	// Bot defaults
	DefaultAcceptingInput      = true
	DefaultNotAcceptingMessage = "This bot is currently set to not accept user input."
	DefaultTimeout             = 2 * time.Second
	DefaultTimeoutMessage      = "ERROR: The request has timed out."
	DefaultLocale              = "en-US"

	// Normalize defaults
	DefaultStripPattern = "[^0-9a-zA-Z]"
	DefaultMaxThatSize  = 256

	// Session defaults
	DefaultSessionBackend       = "memory"
	DefaultSessionSQLitePath    = "data/sessions.db"
	DefaultSessionSQLiteDriver  = "sqlite"
	DefaultSessionBusyTimeout   = 5 * time.Second
	DefaultSessionHistorySize   = 20
	DefaultSessionIdleTTL       = 30 * 24 * time.Hour
	DefaultSessionPruneSchedule = "0 4 * * *"

	// Rules defaults
	DefaultRulesPath     = "rules"
	DefaultRulesWatch    = false
	DefaultRulesDebounce = 100 * time.Millisecond

	// Git rule source defaults
	DefaultGitBranch       = "main"
	DefaultGitLocalPath    = "data/rules-repo"
	DefaultGitPollInterval = 30 * time.Second
	DefaultGitTimeout      = 30 * time.Second
	DefaultGitAuthType     = "none"

	// Logging defaults
	DefaultLoggingEnabled    = false
	DefaultLoggingLevel      = "info"
	DefaultLoggingFormat     = "text"
	DefaultLoggingBufferSize = 64

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "parley"
	DefaultMetricsSubsystem = "engine"
	DefaultMetricsPath      = "/metrics"

	// Tracing defaults
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "parley"
)

// DefaultSplitters are the sentence delimiters used when none are configured.
var DefaultSplitters = []string{".", "!", "?", ";"}

// DefaultTurnDurationBuckets are histogram buckets for turn duration in seconds.
var DefaultTurnDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}

// DefaultBotProperties are the bot properties used when the configuration
// does not name them.
var DefaultBotProperties = map[string]string{
	"name":       "Unknown",
	"botmaster":  "Unknown",
	"master":     "Unknown",
	"location":   "Unknown",
	"gender":     "unknown",
	"birthday":   "2006/11/08",
	"birthplace": "Unknown",
}

// DefaultPredicates are the session variable defaults used when the
// configuration does not name them.
var DefaultPredicates = map[string]string{
	"topic": "*",
}

// Default returns a configuration with every field set to its default.
// LoadConfig decodes YAML on top of this value, so boolean settings whose
// default is true survive when the file does not mention them.
func Default() *Config {
	cfg := &Config{
		Bot: BotConfig{
			AcceptingInput: DefaultAcceptingInput,
		},
		Rules: RulesConfig{
			Watch: DefaultRulesWatch,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{Enabled: DefaultLoggingEnabled},
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{Enabled: DefaultTracingEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean fields are left untouched; use Default for a fully populated value.
func ApplyDefaults(cfg *Config) {
	// Bot defaults
	if cfg.Bot.NotAcceptingMessage == "" {
		cfg.Bot.NotAcceptingMessage = DefaultNotAcceptingMessage
	}
	if cfg.Bot.Timeout == 0 {
		cfg.Bot.Timeout = DefaultTimeout
	}
	if cfg.Bot.TimeoutMessage == "" {
		cfg.Bot.TimeoutMessage = DefaultTimeoutMessage
	}
	if cfg.Bot.Locale == "" {
		cfg.Bot.Locale = DefaultLocale
	}
	if cfg.Bot.Properties == nil {
		cfg.Bot.Properties = make(map[string]string, len(DefaultBotProperties))
	}
	for name, value := range DefaultBotProperties {
		if _, ok := cfg.Bot.Properties[name]; !ok {
			cfg.Bot.Properties[name] = value
		}
	}

	// Normalize defaults
	if cfg.Normalize.StripPattern == "" {
		cfg.Normalize.StripPattern = DefaultStripPattern
	}
	if len(cfg.Normalize.Splitters) == 0 {
		cfg.Normalize.Splitters = append([]string(nil), DefaultSplitters...)
	}
	if cfg.Normalize.MaxThatSize == 0 {
		cfg.Normalize.MaxThatSize = DefaultMaxThatSize
	}

	applySessionDefaults(cfg)

	// Rules defaults
	if len(cfg.Rules.Paths) == 0 {
		cfg.Rules.Paths = []string{DefaultRulesPath}
	}
	if cfg.Rules.Debounce == 0 {
		cfg.Rules.Debounce = DefaultRulesDebounce
	}
	applyGitDefaults(&cfg.Rules.Git)

	applyTelemetryDefaults(cfg)
}

// applySessionDefaults applies default values to session configuration.
func applySessionDefaults(cfg *Config) {
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = DefaultSessionBackend
	}
	if cfg.Session.SQLitePath == "" {
		cfg.Session.SQLitePath = DefaultSessionSQLitePath
	}
	if cfg.Session.SQLiteDriver == "" {
		cfg.Session.SQLiteDriver = DefaultSessionSQLiteDriver
	}
	if cfg.Session.BusyTimeout == 0 {
		cfg.Session.BusyTimeout = DefaultSessionBusyTimeout
	}
	if cfg.Session.HistorySize == 0 {
		cfg.Session.HistorySize = DefaultSessionHistorySize
	}
	if cfg.Session.IdleTTL == 0 {
		cfg.Session.IdleTTL = DefaultSessionIdleTTL
	}
	if cfg.Session.PruneSchedule == "" {
		cfg.Session.PruneSchedule = DefaultSessionPruneSchedule
	}
	if cfg.Session.DefaultPredicates == nil {
		cfg.Session.DefaultPredicates = make(map[string]string, len(DefaultPredicates))
	}
	for name, value := range DefaultPredicates {
		if _, ok := cfg.Session.DefaultPredicates[name]; !ok {
			cfg.Session.DefaultPredicates[name] = value
		}
	}
}

// applyGitDefaults applies default values to the Git rule source.
func applyGitDefaults(cfg *GitRulesConfig) {
	if cfg.Branch == "" {
		cfg.Branch = DefaultGitBranch
	}
	if cfg.LocalPath == "" {
		cfg.LocalPath = DefaultGitLocalPath
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultGitPollInterval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultGitTimeout
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = DefaultGitAuthType
	}
}

// applyTelemetryDefaults applies default values to logging, metrics and tracing configuration.
func applyTelemetryDefaults(cfg *Config) {
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Logging.BufferSize == 0 {
		cfg.Telemetry.Logging.BufferSize = DefaultLoggingBufferSize
	}

	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Telemetry.Metrics.TurnDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.TurnDurationBuckets = append([]float64(nil), DefaultTurnDurationBuckets...)
	}

	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
