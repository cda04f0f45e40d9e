package rules

import "context"

// EventType describes a change in a rule source.
type EventType string

const (
	// EventChanged means the source's rules should be reloaded.
	EventChanged EventType = "changed"

	// EventError means the source hit an error while watching.
	EventError EventType = "error"
)

// Event is sent by Source.Watch when the source changes.
type Event struct {
	Type  EventType
	Path  string
	Error error
}

// Source supplies rules to the engine.
type Source interface {
	// Load returns every rule the source currently holds.
	Load(ctx context.Context) ([]*Rule, error)

	// Watch reports changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan Event, error)
}
