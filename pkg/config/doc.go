// Package config provides configuration management for parley.
//
// Configuration is read from a YAML file, layered over built-in defaults,
// overridden by environment variables, and validated before use.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("parley.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("parley.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention PARLEY_SECTION_FIELD:
//
//   - PARLEY_BOT_TIMEOUT overrides bot.timeout
//   - PARLEY_SESSION_BACKEND overrides session.backend
//   - PARLEY_RULES_PATHS overrides rules.paths (comma separated)
//   - PARLEY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton
//
// Commands call Initialize once at startup and read the result with
// GetConfig. Library packages take explicit values instead.
package config
