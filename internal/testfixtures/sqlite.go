package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/dateplanner/internal/config"
	"github.com/example/dateplanner/internal/store"
)

// NewStore opens a freshly migrated database in a temporary directory and
// closes it when the test ends.
func NewStore(tb testing.TB) *store.Store {
	tb.Helper()
	return NewStoreAt(tb, filepath.Join(tb.TempDir(), "planner_test.db"))
}

// NewStoreAt is NewStore for an explicit path. Any existing database at path
// is deleted first.
func NewStoreAt(tb testing.TB, path string) *store.Store {
	tb.Helper()

	s, err := store.OpenFresh(context.Background(), store.Options{
		Path:           path,
		MaxConnections: 1,
		BusyTimeout:    5 * time.Second,
		Logger:         DiscardLogger(),
	})
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// NewConfiguredStore opens a fresh store at the configured test database
// (SERVICE_TEST_DB_FILE) with the configured connection settings. Tests
// using it must not run in parallel with each other.
func NewConfiguredStore(tb testing.TB) *store.Store {
	tb.Helper()

	cfg, err := config.Load()
	if err != nil {
		tb.Fatalf("failed to load configuration: %v", err)
	}
	s, err := store.OpenFresh(context.Background(), store.Options{
		Path:           cfg.TestDBFile,
		MaxConnections: cfg.DBMaxConnections,
		BusyTimeout:    cfg.DBTimeout,
		Logger:         DiscardLogger(),
	})
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// NewStoreAtExisting opens the database at path without deleting it first.
func NewStoreAtExisting(tb testing.TB, path string) *store.Store {
	tb.Helper()

	s, err := store.Open(context.Background(), store.Options{
		Path:           path,
		MaxConnections: 1,
		BusyTimeout:    5 * time.Second,
		Logger:         DiscardLogger(),
	})
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
