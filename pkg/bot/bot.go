package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/graph"
	"mercator-hq/parley/pkg/normalize"
	"mercator-hq/parley/pkg/rules"
	"mercator-hq/parley/pkg/session"
	"mercator-hq/parley/pkg/substitution"
	"mercator-hq/parley/pkg/telemetry/metrics"
	"mercator-hq/parley/pkg/telemetry/tracing"
	"mercator-hq/parley/pkg/template"
)

// Options holds the collaborators of a Bot. Every field is optional.
type Options struct {
	// Store holds sessions. Nil uses an in-memory store.
	Store session.Store

	// Substitutions are the tables used by person, person2, gender and
	// normalize. Nil loads config.Substitutions.File, or the built-in
	// tables when no file is configured.
	Substitutions *substitution.Tables

	// Metrics records turn and rule metrics. Nil disables metrics.
	Metrics *metrics.Collector

	// Tracer traces turns. Nil disables tracing.
	Tracer *tracing.Tracer

	// Logger is the base logger. Nil uses slog.Default().
	Logger *slog.Logger

	// Version is reported by the version element when the config sets none.
	Version string
}

// Bot is the conversation engine. It owns the rule graph shared by every
// session and evaluates turns against it. A Bot is safe for concurrent use;
// turns on the same session are serialized.
type Bot struct {
	// cfg is the configuration the bot was built with
	cfg *config.Config

	// norm splits input and builds paths
	norm *normalize.Normalizer

	// subs are the substitution tables
	subs *substitution.Tables

	// store holds sessions
	store    session.Store
	sessOpts session.Options

	metrics *metrics.Collector
	tracer  *tracing.Tracer
	logger  *slog.Logger
	version string

	// handlers maps element kinds to their behaviour
	handlers map[template.Kind]Handler

	// graph is swapped whole on reload; learned rules go into the current graph
	graph atomic.Pointer[graph.Graph]

	// mu serializes learning with reloads
	mu      sync.Mutex
	learned []*rules.Rule
	source  rules.Source

	now  func() time.Time
	intn func(n int) int
}

// New creates a Bot with an empty rule graph.
func New(cfg *config.Config, opts Options) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	norm, err := normalize.New(normalize.Options{
		StripPattern: cfg.Normalize.StripPattern,
		Splitters:    cfg.Normalize.Splitters,
		MaxThatSize:  cfg.Normalize.MaxThatSize,
		Locale:       cfg.Bot.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	subs := opts.Substitutions
	if subs == nil {
		if cfg.Substitutions.File != "" {
			subs, err = substitution.LoadFile(cfg.Substitutions.File)
			if err != nil {
				return nil, fmt.Errorf("failed to load substitutions: %w", err)
			}
		} else {
			subs = substitution.Defaults()
		}
	}

	sessOpts := session.OptionsFromConfig(&cfg.Session)
	store := opts.Store
	if store == nil {
		store = session.NewMemoryStore(sessOpts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	version := cfg.Bot.Version
	if version == "" {
		version = opts.Version
	}

	b := &Bot{
		cfg:      cfg,
		norm:     norm,
		subs:     subs,
		store:    store,
		sessOpts: sessOpts,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		logger:   logger.With("component", "bot"),
		version:  version,
		handlers: defaultHandlers(),
		now:      time.Now,
		intn:     rand.IntN,
	}
	b.graph.Store(graph.New())

	return b, nil
}

// Handle replaces the behaviour of one element kind. The handler table is
// read without locking, so Handle must be called before the bot serves
// turns and never concurrently with Submit or Process.
func (b *Bot) Handle(kind template.Kind, h Handler) {
	b.handlers[kind] = h
}

// Normalizer returns the bot's normalizer.
func (b *Bot) Normalizer() *normalize.Normalizer {
	return b.norm
}

// Store returns the session store.
func (b *Bot) Store() session.Store {
	return b.store
}

// Size returns the number of rules in the graph.
func (b *Bot) Size() int {
	return b.graph.Load().Size()
}

// Load replaces the rule graph with rs plus every rule learned so far. The
// new graph is built aside and swapped in, so turns in flight keep matching
// against the old one. A rule with an empty pattern fails the whole load
// and leaves the current graph in place.
func (b *Bot) Load(rs []*rules.Rule) error {
	g := graph.New()
	for i, r := range rs {
		if err := b.insert(g, r); err != nil {
			return &LoadError{Index: i, Source: r.Source, Cause: err}
		}
	}

	b.mu.Lock()
	for _, r := range b.learned {
		if err := b.insert(g, r); err != nil {
			b.logger.Warn("dropping learned rule", "rule", r.String(), "error", err)
		}
	}
	b.graph.Store(g)
	b.mu.Unlock()

	b.metrics.SetRuleCount(g.Size())
	b.logger.Info("rules loaded",
		"rule_count", g.Size(),
		"records", len(rs),
	)
	return nil
}

// LoadRules loads every rule from src and remembers src for Reload and Watch.
func (b *Bot) LoadRules(ctx context.Context, src rules.Source) error {
	if src == nil {
		return errors.New("rule source cannot be nil")
	}

	rs, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	if err := b.Load(rs); err != nil {
		return err
	}

	b.mu.Lock()
	b.source = src
	b.mu.Unlock()
	return nil
}

// Reload loads the remembered source again. On failure the current graph
// stays in service.
func (b *Bot) Reload(ctx context.Context) error {
	b.mu.Lock()
	src := b.source
	b.mu.Unlock()

	if src == nil {
		return errors.New("no rule source loaded")
	}

	ctx, span := b.tracer.Start(ctx, tracing.SpanReload)
	defer span.End()

	err := b.reload(ctx, src)
	if err != nil {
		tracing.SetError(span, err)
		b.metrics.RecordReload("error")
		b.logger.Error("rule reload failed, keeping current rules", "error", err)
		return err
	}

	b.metrics.RecordReload("success")
	return nil
}

func (b *Bot) reload(ctx context.Context, src rules.Source) error {
	rs, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	return b.Load(rs)
}

// Watch reloads the remembered source whenever it reports a change. It
// blocks until ctx is cancelled or the source stops watching.
func (b *Bot) Watch(ctx context.Context) error {
	b.mu.Lock()
	src := b.source
	b.mu.Unlock()

	if src == nil {
		return errors.New("no rule source loaded")
	}

	events, err := src.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch rules: %w", err)
	}

	for ev := range events {
		switch ev.Type {
		case rules.EventChanged:
			b.logger.Info("rule source changed", "path", ev.Path)
			_ = b.Reload(ctx)
		case rules.EventError:
			b.logger.Warn("rule source error", "path", ev.Path, "error", ev.Error)
		}
	}
	return ctx.Err()
}

// Learn inserts r into the live graph. It is visible to every match that
// starts afterwards and survives reloads.
func (b *Bot) Learn(r *rules.Rule) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.graph.Load()
	if err := b.insert(g, r); err != nil {
		return err
	}
	b.learned = append(b.learned, r)

	b.metrics.RecordRuleLearned()
	b.metrics.SetRuleCount(g.Size())
	b.logger.Info("rule learned", "rule", r.String())
	return nil
}

// Learned returns the rules learned since the bot was created.
func (b *Bot) Learned() []*rules.Rule {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*rules.Rule(nil), b.learned...)
}

func (b *Bot) insert(g *graph.Graph, r *rules.Rule) error {
	path, ok := b.norm.PatternPath(r.Pattern, r.That, r.Topic)
	if !ok {
		return rules.ErrEmptyPattern
	}
	g.Insert(path, r)
	return nil
}

// session returns the session for id, falling back to a transient session
// when the store fails.
func (b *Bot) session(ctx context.Context, id string) *session.Session {
	s, created, err := b.store.GetOrCreate(ctx, id)
	if err != nil {
		b.logger.ErrorContext(ctx, "session store failed, using transient session",
			"session_id", id,
			"error", err,
		)
		return session.New(id, b.sessOpts)
	}
	if created {
		b.metrics.RecordSessionCreated()
	}
	return s
}
