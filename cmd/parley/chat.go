package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mercator-hq/parley/pkg/bot"
	"mercator-hq/parley/pkg/cli"
	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/rules"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/telemetry/health"
	"mercator-hq/parley/pkg/telemetry/metrics"
	"mercator-hq/parley/pkg/telemetry/tracing"
)

// shutdownTimeout bounds the HTTP server and tracer shutdown.
const shutdownTimeout = 5 * time.Second

var chatFlags struct {
	session     string
	message     string
	metricsAddr string
	saveLearned string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot",
	Long: `Load the configured rules and answer input.

Without --message, lines are read from stdin and each line is one turn.
Type /quit or send EOF to stop.

Examples:
  # Interactive session
  parley chat

  # Resume a stored session and answer one message
  parley chat --session alice --message "What is my name?"

  # Serve /metrics, /health and /ready while chatting
  parley chat --metrics-addr 127.0.0.1:9090`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFlags.session, "session", "s", "", "session id (default: a new random id)")
	chatCmd.Flags().StringVarP(&chatFlags.message, "message", "m", "", "answer one message and exit")
	chatCmd.Flags().StringVar(&chatFlags.metricsAddr, "metrics-addr", "", "serve metrics and health endpoints on this address")
	chatCmd.Flags().StringVar(&chatFlags.saveLearned, "save-learned", "", "write rules learned during the session to this file on exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()
	log := logger.Slog()

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error(), err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	store, err := session.Open(&cfg.Session)
	if err != nil {
		return cli.NewConfigError("session", err.Error(), err)
	}
	defer func() { _ = store.Close() }()

	b, err := bot.New(cfg, bot.Options{
		Store:   store,
		Metrics: collector,
		Tracer:  tracer,
		Logger:  log,
		Version: Version,
	})
	if err != nil {
		return cli.NewConfigError("", err.Error(), err)
	}

	src, err := newRuleSource(cfg, log)
	if err != nil {
		return err
	}
	if err := b.LoadRules(ctx, src); err != nil {
		return cli.NewCommandError("chat", err)
	}

	if cfg.Rules.Watch {
		go func() {
			if err := b.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("rule watcher stopped", "error", err)
			}
		}()
	}

	pruner := session.NewPruner(store, session.PrunerConfig{
		IdleTTL:  cfg.Session.IdleTTL,
		Schedule: cfg.Session.PruneSchedule,
	}, log, collector.RecordSessionsPruned)
	scheduler := session.NewScheduler(pruner)
	if err := scheduler.Start(ctx); err != nil {
		log.Warn("failed to start session pruning", "error", err)
	} else {
		defer scheduler.Stop()
	}

	addr := chatFlags.metricsAddr
	if addr == "" {
		addr = cfg.Telemetry.Metrics.ListenAddress
	}
	if addr != "" {
		srv := newTelemetryServer(addr, cfg, b, collector)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("telemetry server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("telemetry server listening", "address", addr)
	}

	sessionID := chatFlags.session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	out := cmd.OutOrStdout()
	if chatFlags.message != "" {
		res := b.Submit(ctx, chatFlags.message, sessionID)
		fmt.Fprintln(out, res.Output())
	} else {
		fmt.Fprintf(out, "Parley %s, %d rules loaded, session %s. Type /quit to exit.\n", Version, b.Size(), sessionID)
		converse(ctx, b, sessionID, cmd.InOrStdin(), out)
	}

	if chatFlags.saveLearned != "" {
		if err := saveLearned(chatFlags.saveLearned, b.Learned()); err != nil {
			return cli.NewCommandError("chat", err)
		}
	}
	return nil
}

// converse answers each input line until EOF, /quit or ctx is done.
func converse(ctx context.Context, b *bot.Bot, sessionID string, in io.Reader, out io.Writer) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return
			}
			line = strings.TrimSpace(line)
			if line == "/quit" {
				return
			}
			if line == "" {
				continue
			}
			fmt.Fprintln(out, b.Submit(ctx, line, sessionID).Output())
		}
	}
}

// newTelemetryServer serves metrics and health endpoints.
func newTelemetryServer(addr string, cfg *config.Config, b *bot.Bot, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	if collector != nil {
		mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
	}

	checker := health.New(health.DefaultCheckTimeout)
	checker.Register("rules", func(ctx context.Context) error {
		if b.Size() == 0 {
			return errors.New("no rules loaded")
		}
		return nil
	})
	checker.Register("sessions", func(ctx context.Context) error {
		_, err := b.Store().List(ctx)
		return err
	})
	health.Mount(mux, checker, Version)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// saveLearned writes learned rules as a rule file.
func saveLearned(path string, learned []*rules.Rule) error {
	if len(learned) == 0 {
		slog.Debug("no learned rules to save")
		return nil
	}
	data, err := rules.Marshal(learned)
	if err != nil {
		return fmt.Errorf("failed to encode learned rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write learned rules: %w", err)
	}
	return nil
}
