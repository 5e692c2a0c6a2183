// Package store owns the planner database: it opens the SQLite file, applies
// connection settings and migrations, and hands out serialized access to the
// one connection every query runs on.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/example/dateplanner/internal/store/migration"
	"github.com/example/dateplanner/internal/store/migrations"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// Options configures Open.
type Options struct {
	// Path is the database file. Parent directories are created as needed.
	Path string

	// MaxConnections caps the database/sql pool. Queries still run on the
	// single guarded connection.
	MaxConnections int

	// BusyTimeout is how long SQLite waits on a locked database file.
	BusyTimeout time.Duration

	// Migrations overrides the embedded schema scripts.
	Migrations fs.FS

	Logger *slog.Logger
}

// Store is an open planner database.
type Store struct {
	*Guard

	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the database at opts.Path, applies PRAGMAs and pending
// migrations on the guarded connection, and returns the ready store.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store: database path is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store", "path", opts.Path)

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverName, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxConnections > 0 {
		db.SetMaxOpenConns(opts.MaxConnections)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if err := configure(ctx, conn, opts.BusyTimeout); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}

	source := opts.Migrations
	if source == nil {
		source = migrations.FS
	}
	if err := migration.NewRunner(conn, source, logger).Run(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.InfoContext(ctx, "database ready")
	return &Store{
		Guard:  NewGuard(conn),
		db:     db,
		path:   opts.Path,
		logger: logger,
	}, nil
}

// OpenFresh deletes any existing database at opts.Path, including its WAL
// and shared-memory companions, and then opens it. Intended for tests and
// local development.
func OpenFresh(ctx context.Context, opts Options) (*Store, error) {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(opts.Path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove %s: %w", opts.Path+suffix, err)
		}
	}
	return Open(ctx, opts)
}

func configure(ctx context.Context, conn *sql.Conn, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	var mode string
	if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the guarded connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.WithConnection(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Seed runs a SQL script in one transaction on the guarded connection.
func (s *Store) Seed(ctx context.Context, script string) error {
	return s.WithConnection(ctx, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin seed transaction: %w", err)
		}
		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
		}()

		if _, err := tx.ExecContext(ctx, script); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("seed failed (rollback error: %v): %w", rbErr, err)
			}
			return fmt.Errorf("seed database: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit seed: %w", err)
		}
		s.logger.InfoContext(ctx, "seed applied")
		return nil
	})
}

// Close waits for the in-flight operation and releases the connection and
// the pool.
func (s *Store) Close() error {
	return errors.Join(s.Guard.close(context.Background()), s.db.Close())
}
