package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/example/dateplanner/internal/model"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{err: nil, want: ""},
		{err: ErrNotFound, want: "not_found"},
		{err: &model.PlanURLNotFoundError{URLID: "abc"}, want: "not_found"},
		{err: fmt.Errorf("wrapped: %w", ErrSlugExhausted), want: "conflict"},
		{err: &model.QueryError{Op: "create", Entity: "plan", Constraint: model.ConstraintUnique, Err: errors.New("dup")}, want: "conflict"},
		{err: &model.QueryError{Op: "get", Entity: "plan", Err: errors.New("disk")}, want: "query"},
		{err: &model.DecodeError{Entity: "plan", Column: "ctime", Err: errors.New("bad")}, want: "decode"},
		{err: &ValidationError{FieldErrors: map[string]string{"name": "required"}}, want: "validation"},
		{err: context.Canceled, want: "canceled"},
		{err: errors.New("boom"), want: "unexpected"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMapModelError(t *testing.T) {
	t.Parallel()

	if err := mapModelError(&model.EntityNotFoundError{Entity: "plan", ID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	other := errors.New("boom")
	if err := mapModelError(other); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if mapModelError(nil) != nil {
		t.Fatal("expected nil for nil")
	}
}
