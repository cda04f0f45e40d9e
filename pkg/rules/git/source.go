package git

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"mercator-hq/parley/pkg/config"
	"mercator-hq/parley/pkg/rules"
)

// Source is a rules.Source backed by a Git repository.
type Source struct {
	cfg    *config.GitRulesConfig
	repo   *Repository
	logger *slog.Logger

	mu     sync.Mutex
	cloned bool
}

var _ rules.Source = (*Source)(nil)

// NewSource creates a Git rule source.
func NewSource(cfg *config.GitRulesConfig, logger *slog.Logger) (*Source, error) {
	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		cfg:    cfg,
		repo:   repo,
		logger: logger.With("component", "rules.git"),
	}, nil
}

// Repository returns the underlying repository manager.
func (s *Source) Repository() *Repository {
	return s.repo
}

// Load clones the repository on first use, then loads every rule file
// under the configured path of the working tree.
func (s *Source) Load(ctx context.Context) ([]*rules.Rule, error) {
	if err := s.ensureCloned(ctx); err != nil {
		return nil, err
	}

	rs, err := rules.NewFileSource([]string{s.repo.RulePath()}, 0, s.logger).Load(ctx)
	if err != nil {
		return nil, err
	}

	if commit, err := s.repo.CurrentCommit(); err == nil {
		s.logger.Info("loaded rules from repository",
			"repository", s.cfg.Repository,
			"commit", shortSHA(commit.SHA),
			"rule_count", len(rs),
		)
	}
	return rs, nil
}

// Watch polls the remote every PollInterval until ctx is cancelled.
func (s *Source) Watch(ctx context.Context) (<-chan rules.Event, error) {
	if err := s.ensureCloned(ctx); err != nil {
		return nil, err
	}

	interval := s.cfg.PollInterval
	if interval <= 0 {
		interval = config.DefaultGitPollInterval
	}

	out := make(chan rules.Event, 1)
	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			ev, ok := s.poll(ctx)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info("watching repository",
		"repository", s.cfg.Repository,
		"branch", s.cfg.Branch,
		"poll_interval", interval,
	)
	return out, nil
}

// poll pulls once. It reports an event when the pull failed or moved HEAD
// across a rule file.
func (s *Source) poll(ctx context.Context) (rules.Event, bool) {
	result, err := s.repo.Pull(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return rules.Event{}, false
		}
		s.logger.Warn("pull failed", "error", err)
		return rules.Event{Type: rules.EventError, Path: s.cfg.Repository, Error: err}, true
	}
	if !result.HadChanges {
		return rules.Event{}, false
	}

	s.logger.Info("detected changes",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles),
	)

	if !s.touchesRules(result.ChangedFiles) {
		s.logger.Debug("no rule files changed, skipping reload")
		return rules.Event{}, false
	}
	return rules.Event{Type: rules.EventChanged, Path: s.repo.RulePath()}, true
}

// touchesRules reports whether any changed file is a rule file under Path.
func (s *Source) touchesRules(files []string) bool {
	prefix := strings.Trim(path.Clean("/"+s.cfg.Path), "/")
	for _, f := range files {
		if !rules.IsRuleFile(f) {
			continue
		}
		if prefix == "" || f == prefix || strings.HasPrefix(f, prefix+"/") {
			return true
		}
	}
	return false
}

func (s *Source) ensureCloned(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cloned {
		return nil
	}
	if err := s.repo.Clone(ctx); err != nil {
		return fmt.Errorf("rules repository: %w", err)
	}
	s.cloned = true
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
