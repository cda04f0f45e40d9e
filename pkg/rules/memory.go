package rules

import (
	"context"
	"sync"
)

// MemorySource is an in-memory rule source for tests and embedding.
type MemorySource struct {
	mu     sync.RWMutex
	rules  []*Rule
	events chan Event
}

// NewMemorySource creates a new in-memory rule source.
func NewMemorySource(rs ...*Rule) *MemorySource {
	for _, r := range rs {
		if r.Source == "" {
			r.Source = "memory"
		}
	}
	return &MemorySource{
		rules:  rs,
		events: make(chan Event, 1),
	}
}

// Load returns a copy of the stored rule list.
func (s *MemorySource) Load(ctx context.Context) ([]*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// Watch forwards SetRules notifications until ctx is cancelled.
func (s *MemorySource) Watch(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-s.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SetRules replaces the stored rules and notifies a watcher, if any.
func (s *MemorySource) SetRules(rs []*Rule) {
	s.mu.Lock()
	s.rules = rs
	s.mu.Unlock()

	select {
	case s.events <- Event{Type: EventChanged, Path: "memory"}:
	default:
	}
}
