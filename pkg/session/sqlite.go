package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // pure Go SQLite driver ("sqlite")
)

// Driver names accepted by SQLiteConfig.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	vars TEXT NOT NULL,
	history TEXT NOT NULL,
	accepting INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	last_active INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_last_active ON sessions(last_active);
`

// SQLiteConfig configures the SQLite session store.
type SQLiteConfig struct {
	// Path is the database file.
	Path string

	// Driver is DriverModernc (default) or DriverCgo.
	Driver string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore persists sessions in SQLite. Live sessions are cached so
// that concurrent turns on one id share a single Session.
type SQLiteStore struct {
	db   *sql.DB
	opts Options

	mu    sync.Mutex
	cache map[string]*Session

	saveStmt   *sql.Stmt
	loadStmt   *sql.Stmt
	deleteStmt *sql.Stmt
	listStmt   *sql.Stmt
	pruneStmt  *sql.Stmt
	closeOnce  sync.Once
}

// NewSQLiteStore opens (and if needed creates) the database at cfg.Path.
func NewSQLiteStore(cfg SQLiteConfig, opts Options) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:    db,
		opts:  opts,
		cache: make(map[string]*Session),
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

// buildDSN encodes the journal mode and busy timeout in the syntax each
// driver understands.
func buildDSN(cfg SQLiteConfig) (string, error) {
	ms := cfg.BusyTimeout.Milliseconds()
	switch cfg.Driver {
	case DriverModernc:
		return fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", cfg.Path, ms), nil
	case DriverCgo:
		return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", cfg.Path, ms), nil
	default:
		return "", fmt.Errorf("unknown sqlite driver %q (valid: %s, %s)", cfg.Driver, DriverModernc, DriverCgo)
	}
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO sessions (id, vars, history, accepting, created_at, last_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			vars = excluded.vars,
			history = excluded.history,
			accepting = excluded.accepting,
			last_active = excluded.last_active
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT vars, history, accepting, created_at, last_active
		FROM sessions
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, history, created_at, last_active
		FROM sessions
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE last_active < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Get returns a cached or persisted session.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.cache[id]; ok {
		return sess, nil
	}

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache[id] = sess
	return sess, nil
}

// GetOrCreate returns the session for id, creating and persisting a new one
// if the database has none.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, id string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.cache[id]; ok {
		return sess, false, nil
	}

	sess, err := s.load(ctx, id)
	if err == nil {
		s.cache[id] = sess
		return sess, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	sess = New(id, s.opts)
	if err := s.save(ctx, sess.Record()); err != nil {
		return nil, false, err
	}
	s.cache[id] = sess
	return sess, true, nil
}

func (s *SQLiteStore) load(ctx context.Context, id string) (*Session, error) {
	var (
		varsJSON, historyJSON string
		accepting             bool
		createdAt, lastActive int64
	)
	err := s.loadStmt.QueryRowContext(ctx, id).Scan(&varsJSON, &historyJSON, &accepting, &createdAt, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", id, err)
	}

	rec := Record{
		ID:         id,
		Accepting:  accepting,
		CreatedAt:  time.Unix(0, createdAt),
		LastActive: time.Unix(0, lastActive),
	}
	if err := json.Unmarshal([]byte(varsJSON), &rec.Vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vars of session %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &rec.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history of session %q: %w", id, err)
	}

	return FromRecord(rec, s.opts), nil
}

// Save writes a snapshot of sess.
func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, sess.Record())
}

func (s *SQLiteStore) save(ctx context.Context, rec Record) error {
	varsJSON, err := json.Marshal(rec.Vars)
	if err != nil {
		return fmt.Errorf("failed to marshal vars: %w", err)
	}
	if rec.History == nil {
		rec.History = []Turn{}
	}
	historyJSON, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = s.saveStmt.ExecContext(ctx,
		rec.ID,
		string(varsJSON),
		string(historyJSON),
		rec.Accepting,
		rec.CreatedAt.UnixNano(),
		rec.LastActive.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %q: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a session from the cache and the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, id)
	if _, err := s.deleteStmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	return nil
}

// List returns every persisted session ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var (
			info                  Info
			historyJSON           string
			createdAt, lastActive int64
		)
		if err := rows.Scan(&info.ID, &historyJSON, &createdAt, &lastActive); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var history []Turn
		if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history of session %q: %w", info.ID, err)
		}
		info.Turns = len(history)
		info.CreatedAt = time.Unix(0, createdAt)
		info.LastActive = time.Unix(0, lastActive)
		out = append(out, info)
	}
	return out, rows.Err()
}

// PruneIdle deletes sessions last active before the cutoff.
func (s *SQLiteStore) PruneIdle(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.pruneStmt.ExecContext(ctx, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned sessions: %w", err)
	}

	for id, sess := range s.cache {
		if sess.LastActive().Before(before) {
			delete(s.cache, id)
		}
	}
	return n, nil
}

// Close releases the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt, s.listStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
