package migration

import (
	"context"
	"fmt"
	"time"
)

const createVersionTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL,
	checksum TEXT NOT NULL,
	execution_time_ms INTEGER NOT NULL
)`

// Executor runs scripts against a connection and keeps schema_migrations.
type Executor struct {
	conn Conn
	now  func() time.Time
}

// NewExecutor creates an executor bound to conn.
func NewExecutor(conn Conn) *Executor {
	return &Executor{conn: conn, now: time.Now}
}

// InitializeVersionTable creates schema_migrations if it does not exist.
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	if _, err := e.conn.ExecContext(ctx, createVersionTableSQL); err != nil {
		return newDatabaseError(0, createVersionTableSQL, "create schema_migrations table", err)
	}
	return nil
}

// Apply executes every statement of m and records it, all in one transaction.
func (e *Executor) Apply(ctx context.Context, m Migration) (err error) {
	statements := splitStatements(m.SQL)
	if len(statements) == 0 {
		return newMigrationError(m.Version, m.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	start := e.now()
	tx, err := e.conn.BeginTx(ctx, nil)
	if err != nil {
		return newDatabaseError(m.Version, "", "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = newDatabaseError(m.Version, stmt, fmt.Sprintf("execute statement %d", i+1), execErr)
			return err
		}
	}

	const insertSQL = `INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`
	elapsed := e.now().Sub(start)
	appliedAt := e.now().UTC().Format(time.RFC3339)
	if _, execErr := tx.ExecContext(ctx, insertSQL, m.Version, appliedAt, m.Checksum, elapsed.Milliseconds()); execErr != nil {
		err = newDatabaseError(m.Version, insertSQL, "record migration", execErr)
		return err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		err = newDatabaseError(m.Version, "", "commit transaction", commitErr)
		return err
	}
	return nil
}

// Applied returns the recorded migrations ordered by version.
func (e *Executor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations ORDER BY version ASC`

	rows, err := e.conn.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, newDatabaseError(0, querySQL, "list applied migrations", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			row          AppliedMigration
			appliedAtStr string
			elapsedMs    int64
		)
		if err := rows.Scan(&row.Version, &appliedAtStr, &row.Checksum, &elapsedMs); err != nil {
			return nil, newDatabaseError(0, querySQL, "scan applied migration", err)
		}
		appliedAt, err := time.Parse(time.RFC3339, appliedAtStr)
		if err != nil {
			return nil, newDatabaseError(row.Version, querySQL, "parse applied_at", err)
		}
		row.AppliedAt = appliedAt
		row.ExecutionTime = time.Duration(elapsedMs) * time.Millisecond
		applied = append(applied, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newDatabaseError(0, querySQL, "iterate applied migrations", err)
	}
	return applied, nil
}
