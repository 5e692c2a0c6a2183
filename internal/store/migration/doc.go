// Package migration applies versioned SQL scripts to the planner database.
//
// Scripts live in an fs.FS (normally the embedded internal/store/migrations
// directory) and follow the naming convention {version}_{description}.sql,
// for example "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table together with the script checksum, so running the
// same set twice is a no-op.
//
// The runner is append-only: there is no down direction. Each script runs in
// its own transaction and is recorded in that same transaction.
//
// Example usage:
//
//	runner := migration.NewRunner(conn, migrations.FS, logger)
//	if err := runner.Run(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
