package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is matched by every lookup miss via errors.Is.
	ErrNotFound = errors.New("entity not found")

	// ErrColumnMismatch is returned by CreateMultiple when the payloads do
	// not all produce the same column list.
	ErrColumnMismatch = errors.New("batch rows have different columns")
)

// EntityNotFoundError reports a missing row looked up by primary key.
type EntityNotFoundError struct {
	Entity string
	ID     int64
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool { return target == ErrNotFound }

// PlanURLNotFoundError reports an unknown plan slug.
type PlanURLNotFoundError struct {
	URLID string
}

func (e *PlanURLNotFoundError) Error() string {
	return fmt.Sprintf("plan with url id %q not found", e.URLID)
}

func (e *PlanURLNotFoundError) Is(target error) bool { return target == ErrNotFound }

// UserWebIDNotFoundError reports an unknown user web id.
type UserWebIDNotFoundError struct {
	WebID uuid.UUID
}

func (e *UserWebIDNotFoundError) Error() string {
	return fmt.Sprintf("user with web id %s not found", e.WebID)
}

func (e *UserWebIDNotFoundError) Is(target error) bool { return target == ErrNotFound }

// DecodeError reports a stored value that cannot be converted into its
// entity field.
type DecodeError struct {
	Entity string
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s.%s: %v", e.Entity, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Constraint names the kind of integrity rule a statement violated.
type Constraint string

const (
	ConstraintNone       Constraint = ""
	ConstraintUnique     Constraint = "unique"
	ConstraintPrimaryKey Constraint = "primary_key"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintNotNull    Constraint = "not_null"
	ConstraintCheck      Constraint = "check"
	ConstraintOther      Constraint = "other"
)

// QueryError wraps a failure reported by the database while running a verb.
type QueryError struct {
	Op         string
	Entity     string
	Constraint Constraint
	Err        error
}

func (e *QueryError) Error() string {
	if e.Constraint != ConstraintNone {
		return fmt.Sprintf("%s %s: %s constraint violated: %v", e.Op, e.Entity, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func newQueryError(op, entity string, err error) *QueryError {
	return &QueryError{Op: op, Entity: entity, Constraint: classify(err), Err: err}
}

// IsUniqueViolation reports whether err is a QueryError caused by a unique
// or primary key constraint.
func IsUniqueViolation(err error) bool {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return false
	}
	return qe.Constraint == ConstraintUnique || qe.Constraint == ConstraintPrimaryKey
}

func classify(err error) Constraint {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return ConstraintUnique
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintPrimaryKey
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ConstraintNotNull
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ConstraintCheck
		}
		if serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return ConstraintOther
		}
		return ConstraintNone
	}
	if err == nil {
		return ConstraintNone
	}

	// Drivers that only report text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return ConstraintNotNull
	case strings.Contains(msg, "CHECK constraint failed"):
		return ConstraintCheck
	}
	return ConstraintNone
}
