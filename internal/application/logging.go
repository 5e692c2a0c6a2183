package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/dateplanner/internal/logging"
	"github.com/example/dateplanner/internal/model"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSlugExhausted), model.IsUniqueViolation(err):
		return "conflict"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	var qErr *model.QueryError
	if errors.As(err, &qErr) {
		return "query"
	}
	var dErr *model.DecodeError
	if errors.As(err, &dErr) {
		return "decode"
	}

	return "unexpected"
}

// mapModelError turns lookup misses into ErrNotFound and passes everything
// else through.
func mapModelError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
