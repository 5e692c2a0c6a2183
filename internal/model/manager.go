package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Guard runs a function with exclusive use of the database connection.
// *store.Store and *store.Guard satisfy it.
type Guard interface {
	WithConnection(ctx context.Context, fn func(conn *sql.Conn) error) error
}

// Manager is the handle every verb takes. It is safe for concurrent use.
type Manager struct {
	guard Guard
	held  *sql.Conn // set only on the copy passed to an Exclusive callback

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDSource overrides the generator of external ids.
func WithIDSource(newID func() (uuid.UUID, error)) Option {
	return func(m *Manager) { m.newID = newID }
}

// NewManager returns a Manager that runs every verb through guard.
func NewManager(guard Guard, opts ...Option) *Manager {
	m := &Manager{
		guard: guard,
		now:   time.Now,
		newID: uuid.NewV7,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Exclusive runs fn while holding the connection. Verbs called on the
// Manager passed to fn reuse the held connection instead of queueing, so a
// read followed by a write inside fn cannot interleave with other callers.
// Calling Exclusive on that Manager again runs fn directly.
func (m *Manager) Exclusive(ctx context.Context, fn func(m *Manager) error) error {
	if m.held != nil {
		return fn(m)
	}
	return m.guard.WithConnection(ctx, func(conn *sql.Conn) error {
		held := *m
		held.held = conn
		return fn(&held)
	})
}

func (m *Manager) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if m.held != nil {
		return fn(m.held)
	}
	return m.guard.WithConnection(ctx, fn)
}
