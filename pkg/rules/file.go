package rules

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileSource loads rules from YAML files on disk. Each path may be a single
// file or a directory, which is walked for .yaml and .yml files.
type FileSource struct {
	paths    []string
	debounce time.Duration
	logger   *slog.Logger
}

// NewFileSource creates a new file-based rule source.
func NewFileSource(paths []string, debounce time.Duration, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		paths:    paths,
		debounce: debounce,
		logger:   logger.With("component", "rules.file"),
	}
}

// Load reads every rule file under the configured paths. Any unreadable or
// invalid file fails the whole load, so a reload never serves a partial
// rule set.
func (s *FileSource) Load(ctx context.Context) ([]*Rule, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	var all []*Rule
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("loaded rule file",
			"path", path,
			"rule_count", len(rs),
		)
		all = append(all, rs...)
	}

	s.logger.Info("loaded rules from source",
		"paths", s.paths,
		"file_count", len(files),
		"rule_count", len(all),
	)

	return all, nil
}

// Files lists the rule files under the configured paths in a stable order.
func (s *FileSource) Files() ([]string, error) {
	var files []string
	for _, root := range s.paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %q: %w", root, err)
		}

		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if IsRuleFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %q: %w", root, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Watch reports file changes under the configured paths, debounced.
func (s *FileSource) Watch(ctx context.Context) (<-chan Event, error) {
	cfg := DefaultWatcherConfig()
	cfg.Paths = s.paths
	if s.debounce > 0 {
		cfg.DebounceInterval = s.debounce
	}

	w, err := NewWatcher(cfg, s.logger)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 1)

	// Debounced callbacks can still be in flight when Watch returns, so
	// sends and the final close are serialized.
	var mu sync.Mutex
	closed := false
	notify := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- Event{Type: EventChanged, Path: path}:
		default:
			// A change is already queued; the reload will see this one too.
		}
	}

	go func() {
		err := w.Watch(ctx, notify)
		if err != nil {
			select {
			case out <- Event{Type: EventError, Error: err}:
			case <-ctx.Done():
			}
		}
		_ = w.Close()

		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()

	return out, nil
}

// LoadFile reads and parses one rule file.
func LoadFile(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %q: %w", path, err)
	}
	return Parse(data, path)
}

// IsRuleFile reports whether path has a rule file extension.
func IsRuleFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
