package session

import (
	"fmt"

	"mercator-hq/parley/pkg/config"
)

// OptionsFromConfig returns the session options described by cfg.
func OptionsFromConfig(cfg *config.SessionConfig) Options {
	return Options{
		Defaults:    cfg.DefaultPredicates,
		UnsetValue:  cfg.UnsetValue,
		HistorySize: cfg.HistorySize,
	}
}

// Open creates the store selected by cfg.Backend.
func Open(cfg *config.SessionConfig) (Store, error) {
	opts := OptionsFromConfig(cfg)

	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(opts), nil
	case "sqlite":
		return NewSQLiteStore(SQLiteConfig{
			Path:        cfg.SQLitePath,
			Driver:      cfg.SQLiteDriver,
			BusyTimeout: cfg.BusyTimeout,
		}, opts)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
