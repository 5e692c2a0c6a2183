package migration

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"
)

// Runner applies pending scripts from a source in version order.
type Runner struct {
	source   fs.FS
	executor *Executor
	logger   *slog.Logger

	// VerifyChecksum rejects databases whose applied scripts were edited.
	VerifyChecksum bool
}

// NewRunner creates a runner that reads scripts from source and applies them
// through conn.
func NewRunner(conn Conn, source fs.FS, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:         source,
		executor:       NewExecutor(conn),
		logger:         logger.With("component", "migration"),
		VerifyChecksum: true,
	}
}

// Run applies every pending migration. It is idempotent.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()

	status, err := r.Status(ctx)
	if err != nil {
		return err
	}

	if len(status.Pending) == 0 {
		r.logger.InfoContext(ctx, "database schema up to date", "version", status.CurrentVersion)
		return nil
	}

	r.logger.InfoContext(ctx, "applying migrations",
		"current_version", status.CurrentVersion,
		"pending", len(status.Pending),
	)

	for i, m := range status.Pending {
		logger := r.logger.With("version", m.Version, "file", m.FilePath)
		logger.InfoContext(ctx, "executing migration",
			"description", m.Description,
			"step", fmt.Sprintf("%d/%d", i+1, len(status.Pending)),
		)

		if err := r.executor.Apply(ctx, m); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return newMigrationError(m.Version, m.FilePath, "apply", fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
	}

	r.logger.InfoContext(ctx, "migrations completed",
		"applied", len(status.Pending),
		"duration", time.Since(start),
	)
	return nil
}

// Status reports applied and pending migrations after validating that the
// database and the source agree.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	if err := r.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, err
	}

	available, err := Scan(r.source)
	if err != nil {
		return Status{}, err
	}

	applied, err := r.executor.Applied(ctx)
	if err != nil {
		return Status{}, err
	}

	if err := r.validate(available, applied); err != nil {
		return Status{}, err
	}

	appliedSet := make(map[int]struct{}, len(applied))
	status := Status{Applied: applied}
	for _, a := range applied {
		appliedSet[a.Version] = struct{}{}
		if a.Version > status.CurrentVersion {
			status.CurrentVersion = a.Version
		}
	}
	for _, m := range available {
		if _, ok := appliedSet[m.Version]; !ok {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

func (r *Runner) validate(available []Migration, applied []AppliedMigration) error {
	byVersion := make(map[int]Migration, len(available))
	for i, m := range available {
		if i > 0 && m.Version != available[i-1].Version+1 {
			return fmt.Errorf("%w: missing migration version %03d", ErrVersionConflict, available[i-1].Version+1)
		}
		byVersion[m.Version] = m
	}

	for _, a := range applied {
		m, ok := byVersion[a.Version]
		if !ok {
			return fmt.Errorf("%w: applied migration %03d has no script", ErrVersionConflict, a.Version)
		}
		if r.VerifyChecksum && a.Checksum != m.Checksum {
			return newMigrationError(m.Version, m.FilePath, "verify checksum",
				fmt.Errorf("%w: recorded %s, file %s", ErrChecksumMismatch, a.Checksum, m.Checksum))
		}
	}
	return nil
}
