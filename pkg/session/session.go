package session

import (
	"maps"
	"sync"
	"time"
)

// TopicVar is the variable that holds the session topic.
const TopicVar = "topic"

// Options controls how sessions resolve variables and keep history.
type Options struct {
	// Defaults are returned for variables that were never set.
	Defaults map[string]string

	// UnsetValue is returned for variables with neither a value nor a default.
	UnsetValue string

	// HistorySize is the number of turns kept. Zero or less keeps all turns.
	HistorySize int
}

// Turn is one completed request/response cycle.
type Turn struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Inputs  []string  `json:"inputs"`
	Outputs []string  `json:"outputs"`
}

// Record is the persisted form of a session.
type Record struct {
	ID         string
	Vars       map[string]string
	History    []Turn
	Accepting  bool
	CreatedAt  time.Time
	LastActive time.Time
}

// Session is the state of one user. Accessors are safe for concurrent use;
// BeginTurn serializes whole turns on the same session.
type Session struct {
	id   string
	opts Options

	turn sync.Mutex

	mu         sync.RWMutex
	vars       map[string]string
	history    []Turn
	accepting  bool
	createdAt  time.Time
	lastActive time.Time
}

// New creates an empty session that accepts input.
func New(id string, opts Options) *Session {
	now := time.Now()
	return &Session{
		id:         id,
		opts:       opts,
		vars:       make(map[string]string),
		accepting:  true,
		createdAt:  now,
		lastActive: now,
	}
}

// FromRecord rebuilds a session from its persisted form.
func FromRecord(rec Record, opts Options) *Session {
	s := New(rec.ID, opts)
	if rec.Vars != nil {
		s.vars = rec.Vars
	}
	s.history = rec.History
	s.accepting = rec.Accepting
	if !rec.CreatedAt.IsZero() {
		s.createdAt = rec.CreatedAt
	}
	if !rec.LastActive.IsZero() {
		s.lastActive = rec.LastActive
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// BeginTurn blocks until no other turn runs on this session and returns
// the function that ends the turn.
func (s *Session) BeginTurn() (end func()) {
	s.turn.Lock()
	return s.turn.Unlock
}

// Get returns the value of name, its default, or the unset value.
func (s *Session) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.vars[name]; ok {
		return v
	}
	if v, ok := s.opts.Defaults[name]; ok {
		return v
	}
	return s.opts.UnsetValue
}

// Set stores value under name.
func (s *Session) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Vars returns a copy of the explicitly set variables.
func (s *Session) Vars() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}

// Topic returns the current topic.
func (s *Session) Topic() string {
	return s.Get(TopicVar)
}

// SetTopic changes the current topic.
func (s *Session) SetTopic(topic string) {
	s.Set(TopicVar, topic)
}

// Accepting reports whether the session accepts input.
func (s *Session) Accepting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accepting
}

// SetAccepting changes the accepted input flag.
func (s *Session) SetAccepting(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepting = v
}

// AddTurn appends t to the history, dropping the oldest turns beyond the
// configured size, and marks the session active.
func (s *Session) AddTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, t)
	if n := s.opts.HistorySize; n > 0 && len(s.history) > n {
		s.history = append([]Turn(nil), s.history[len(s.history)-n:]...)
	}
	s.lastActive = time.Now()
}

// History returns the kept turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of kept turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// LastOutput returns the last sentence of the most recent bot response, or
// "" before the first turn.
func (s *Session) LastOutput() string {
	return s.Output(1, -1)
}

// Output returns sentence m (1-based) of the n-th previous response, with
// n=1 the most recent. A negative m counts from the end. Out of range
// indexes yield "".
func (s *Session) Output(n, m int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.history, n, m, func(t Turn) []string { return t.Outputs })
}

// Input returns sentence m (1-based) of the n-th previous request, with
// n=1 the most recent completed turn. A negative m counts from the end.
func (s *Session) Input(n, m int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.history, n, m, func(t Turn) []string { return t.Inputs })
}

func pick(history []Turn, n, m int, field func(Turn) []string) string {
	if n < 1 || n > len(history) {
		return ""
	}
	sentences := field(history[len(history)-n])
	if m < 0 {
		m = len(sentences) + 1 + m
	}
	if m < 1 || m > len(sentences) {
		return ""
	}
	return sentences[m-1]
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// LastActive returns when the session last completed a turn.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Record returns a snapshot of the session for persistence.
func (s *Session) Record() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Record{
		ID:         s.id,
		Vars:       maps.Clone(s.vars),
		History:    append([]Turn(nil), s.history...),
		Accepting:  s.accepting,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
}
