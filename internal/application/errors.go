package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a plan, user or date does not exist or is
	// not reachable from the plan in the request.
	ErrNotFound = errors.New("application: not found")
	// ErrSlugExhausted is returned when no free plan slug was found.
	ErrSlugExhausted = errors.New("application: could not allocate a unique plan url")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error lists the offending fields in a stable order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
