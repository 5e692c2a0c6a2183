package migration

import (
	"context"
	"database/sql"
	"time"
)

// Migration is one versioned SQL script.
type Migration struct {
	Version     int    // numeric prefix of the file name
	Description string // from a "-- Description:" header or the file name
	SQL         string
	FilePath    string
	Checksum    string // hex blake2b-256 of SQL
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       int
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status summarises the migration state of a database.
type Status struct {
	CurrentVersion int // 0 when nothing is applied
	Applied        []AppliedMigration
	Pending        []Migration
}

// Conn is the subset of *sql.DB / *sql.Conn the executor needs.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
