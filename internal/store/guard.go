package store

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by WithConnection after the store has been closed.
var ErrClosed = errors.New("store: closed")

// Guard serializes access to a single database connection. At most one
// function runs against the connection at a time; waiters are served in
// arrival order.
type Guard struct {
	sem    *semaphore.Weighted
	conn   *sql.Conn
	closed bool
}

// NewGuard wraps conn. The guard takes ownership of it.
func NewGuard(conn *sql.Conn) *Guard {
	return &Guard{sem: semaphore.NewWeighted(1), conn: conn}
}

// WithConnection waits for exclusive use of the connection and runs fn with
// it. The connection is released when fn returns or panics. If ctx ends
// before the connection becomes free, fn is not run and ctx.Err() is
// returned.
//
// fn must not retain the connection after it returns.
func (g *Guard) WithConnection(ctx context.Context, fn func(conn *sql.Conn) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	if g.closed {
		return ErrClosed
	}
	return fn(g.conn)
}

// close waits for the in-flight function, if any, and closes the connection.
func (g *Guard) close(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	if g.closed {
		return nil
	}
	g.closed = true
	return g.conn.Close()
}
