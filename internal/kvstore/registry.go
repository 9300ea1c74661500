package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dbdeck/dbdeck/internal/core"
)

// ErrSessionNotFound is returned when an operation references a session id
// absent from the registry, before any client call is attempted.
var ErrSessionNotFound = errors.New("session not found")

// logicalDatabaseCount is the fixed number of numbered partitions within
// one backend instance. A static property of the backend family, not
// discovered from the live server.
const logicalDatabaseCount = 16

// Session pairs a live key-value client with its declared configuration
// and the currently selected logical database. SelectDatabase mutates the
// session in place; the id never changes over a session's lifetime.
type Session struct {
	// ID is the opaque token generated at connect time.
	ID string

	// Config holds the user-supplied connection parameters. Immutable
	// after creation.
	Config core.KVConfig

	// Database is the active logical database index.
	Database int

	client *redis.Client
}

// Registry owns the key-value sessions of the process. Safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty key-value session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// open dials the server described by cfg bound to the given logical
// database and verifies the connection with a ping.
func open(ctx context.Context, cfg core.KVConfig, db int) (*redis.Client, error) {
	if db < 0 || db >= logicalDatabaseCount {
		return nil, fmt.Errorf("database index must be between 0 and %d, got: %d",
			logicalDatabaseCount-1, db)
	}

	host, port := cfg.Addr()
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// TestConnection connects, pings and disconnects. No session is
// registered.
func (r *Registry) TestConnection(ctx context.Context, cfg core.KVConfig) error {
	client, err := open(ctx, cfg, cfg.Database)
	if err != nil {
		return err
	}
	return client.Close()
}

// Connect opens a client bound to the configured logical database
// (default 0), registers a session for it and returns the fresh session
// id.
func (r *Registry) Connect(ctx context.Context, cfg core.KVConfig) (string, error) {
	client, err := open(ctx, cfg, cfg.Database)
	if err != nil {
		return "", err
	}

	session := &Session{
		ID:       uuid.NewString(),
		Config:   cfg,
		Database: cfg.Database,
		client:   client,
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	log.Printf("[REDIS] Connected session %s (%s, db %d)", session.ID, cfg.Host, cfg.Database)
	return session.ID, nil
}

// Disconnect closes the client and removes the session. Disconnecting an
// absent session is a no-op, not an error.
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
	log.Printf("[REDIS] Disconnected session %s", sessionID)
	return session.client.Close()
}

// Close disconnects every registered session. Used at process shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.client.Close(); err != nil && firstErr == nil {
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

// LogicalDatabase is one entry of the fixed database enumeration.
type LogicalDatabase struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Databases returns the fixed enumeration of the 16 labeled logical
// databases.
func (r *Registry) Databases(sessionID string) ([]LogicalDatabase, error) {
	if _, err := r.get(sessionID); err != nil {
		return nil, err
	}

	dbs := make([]LogicalDatabase, logicalDatabaseCount)
	for i := range dbs {
		dbs[i] = LogicalDatabase{Index: i, Name: fmt.Sprintf("db%d", i)}
	}
	return dbs, nil
}

// SelectDatabase switches the session's active logical database in place.
// The client is rebound to the new index; the session id stays the same.
// The new client is dialed outside the registry lock so a hung handshake
// cannot stall operations on unrelated sessions.
func (r *Registry) SelectDatabase(ctx context.Context, sessionID string, index int) error {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.Database == index {
		r.mu.Unlock()
		return nil
	}
	cfg := session.Config
	r.mu.Unlock()

	client, err := open(ctx, cfg, index)
	if err != nil {
		return err
	}

	// The session may have been disconnected while the dial was in
	// flight; re-check before swapping.
	r.mu.Lock()
	session, ok = r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		client.Close()
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	old := session.client
	session.client = client
	session.Database = index
	r.mu.Unlock()

	if old != nil {
		old.Close()
	}
	log.Printf("[REDIS] Session %s switched to db %d", sessionID, index)
	return nil
}
