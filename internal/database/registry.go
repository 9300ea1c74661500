package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/dbdeck/dbdeck/internal/core"
)

// ErrSessionNotFound is returned when an operation references a session id
// absent from the registry, before any driver call is attempted.
var ErrSessionNotFound = errors.New("session not found")

// Session pairs a live relational connection with its declared
// configuration. The handle is non-nil for as long as the session is
// registered; a closed session is removed, never kept around.
type Session struct {
	// ID is the opaque token generated at connect time.
	ID string

	// Config holds the user-supplied connection parameters. Immutable
	// after creation.
	Config core.DatabaseConfig

	db *sql.DB
}

// Registry owns the relational sessions of the process. It is safe for
// concurrent use; it provides no per-session serialization beyond what
// the driver offers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty relational session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// open dials the server described by cfg and verifies the handshake with
// a ping. The pool is pinned to a single connection so that an implicit
// USE applies to the statement issued right after it.
func open(ctx context.Context, cfg core.DatabaseConfig) (*sql.DB, error) {
	host, port := cfg.Addr()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, host, port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// TestConnection opens a short-lived connection with the given parameters
// and closes it again regardless of outcome. No session is registered.
func (r *Registry) TestConnection(ctx context.Context, cfg core.DatabaseConfig) error {
	db, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	return db.Close()
}

// Connect opens and retains a connection, registers a session for it and
// returns the fresh session id. Nothing is registered on handshake
// failure.
func (r *Registry) Connect(ctx context.Context, cfg core.DatabaseConfig) (string, error) {
	db, err := open(ctx, cfg)
	if err != nil {
		return "", err
	}

	session := &Session{
		ID:     uuid.NewString(),
		Config: cfg,
		db:     db,
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	log.Printf("[MYSQL] Connected session %s (%s)", session.ID, session.Config.Host)
	return session.ID, nil
}

// Disconnect closes the underlying handle and removes the session.
// Disconnecting an absent session is a no-op, not an error.
func (r *Registry) Disconnect(sessionID string) error {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	log.Printf("[MYSQL] Disconnected session %s", sessionID)
	return session.db.Close()
}

// Close disconnects every registered session. Used at process shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Count returns the number of registered sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// get looks up a session by id.
func (r *Registry) get(sessionID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

// use re-asserts the database context on the session's handle. Relational
// sessions are not bound to one database; every scoped call selects its
// own context before acting.
func (r *Registry) use(ctx context.Context, session *Session, database string) error {
	if _, err := session.db.ExecContext(ctx, "USE "+quoteIdent(database)); err != nil {
		return fmt.Errorf("failed to select database %s: %w", database, err)
	}
	return nil
}

// scoped resolves the session and selects the database context in one
// step, the common prelude of every database-scoped operation.
func (r *Registry) scoped(ctx context.Context, sessionID, database string) (*Session, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := r.use(ctx, session, database); err != nil {
		return nil, err
	}
	return session, nil
}
