package http

import (
	"context"
	"log/slog"

	"github.com/example/dateplanner/internal/logging"
)

type contextKey string

const planSlugContextKey contextKey = "plan_slug"

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithPlanSlug injects the plan url id resolved from the request path.
func ContextWithPlanSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, planSlugContextKey, slug)
}

// PlanSlugFromContext extracts a plan url id previously associated with the context.
func PlanSlugFromContext(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(planSlugContextKey).(string)
	return slug, ok
}
