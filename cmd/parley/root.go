package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/parley/pkg/cli"
	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/rules"
	rulesgit "mercator-hq/parley/pkg/rules/git"
	"mercator-hq/parley/pkg/telemetry/logging"
)

// defaultConfigFile is read when --config is not given and the file exists.
const defaultConfigFile = "parley.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley - rule-based conversational engine",
	Long: `Parley answers user input by matching it against pattern rules.

Each rule pairs an input pattern, an optional pattern for the bot's previous
reply and an optional topic with a response template. Templates can read and
set session variables, branch on conditions, pick random replies, reformulate
input through the rule set again, and learn new rules at runtime.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the config file with PARLEY_* overrides. A missing
// default config file falls back to the built-in defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError("", "failed to load config", err)
	}
	cfg := config.GetConfig()

	if verbose {
		cfg.Telemetry.Logging.Enabled = true
		cfg.Telemetry.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lc := cfg.Telemetry.Logging
	logger, err := logging.New(logging.Config{
		Enabled:    lc.Enabled,
		Level:      lc.Level,
		Format:     lc.Format,
		AddSource:  lc.AddSource,
		BufferSize: lc.BufferSize,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error(), err)
	}
	slog.SetDefault(logger.Slog())
	return logger, nil
}

// newRuleSource returns the Git source when a repository is configured and
// the file source otherwise.
func newRuleSource(cfg *config.Config, logger *slog.Logger) (rules.Source, error) {
	if cfg.Rules.Git.Repository != "" {
		src, err := rulesgit.NewSource(&cfg.Rules.Git, logger)
		if err != nil {
			return nil, cli.NewConfigError("rules.git", err.Error(), err)
		}
		return src, nil
	}
	return rules.NewFileSource(cfg.Rules.Paths, cfg.Rules.Debounce, logger), nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
