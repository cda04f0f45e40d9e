package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown to a store.
var ErrNotFound = errors.New("session not found")

// Info summarizes a stored session.
type Info struct {
	ID         string
	Turns      int
	CreatedAt  time.Time
	LastActive time.Time
}

// Store creates, fetches and persists sessions.
type Store interface {
	// Get returns an existing session or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// GetOrCreate returns the session for id, creating it if needed.
	// created reports whether a new session was made.
	GetOrCreate(ctx context.Context, id string) (s *Session, created bool, err error)

	// Save persists the current state of s.
	Save(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored session ordered by id.
	List(ctx context.Context) ([]Info, error)

	// PruneIdle removes sessions last active before the cutoff and returns
	// how many were removed.
	PruneIdle(ctx context.Context, before time.Time) (int64, error)

	// Close releases the store's resources.
	Close() error
}
