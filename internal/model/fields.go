package model

import (
	"fmt"
	"time"
)

// TimestampLayout is the storage format of creation timestamps: RFC 3339 in
// UTC with fixed microsecond precision, so stored values sort as text.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp. Any RFC 3339 value is accepted.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Field is one column/value pair of a statement under construction.
type Field struct {
	Column string
	Value  any
}

// Fields is an ordered field list. Values bind in this order.
type Fields []Field

// Columns returns the column names in order.
func (f Fields) Columns() []string {
	columns := make([]string, len(f))
	for i, field := range f {
		columns[i] = field.Column
	}
	return columns
}

// Values returns the values in order.
func (f Fields) Values() []any {
	values := make([]any, len(f))
	for i, field := range f {
		values[i] = field.Value
	}
	return values
}

// Has reports whether column is present.
func (f Fields) Has(column string) bool {
	for _, field := range f {
		if field.Column == column {
			return true
		}
	}
	return false
}

// without returns a copy of f lacking the given columns.
func (f Fields) without(columns ...string) Fields {
	out := make(Fields, 0, len(f))
	for _, field := range f {
		drop := false
		for _, c := range columns {
			if field.Column == c {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, field)
		}
	}
	return out
}

func sameColumns(a, b Fields) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Column != b[i].Column {
			return false
		}
	}
	return true
}

// Filter is a conjunction of column equalities.
type Filter []Field

// Eq returns a single-column filter.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// And appends an equality to the filter.
func (f Filter) And(column string, value any) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Field{Column: column, Value: value})
}

// Creatable is a create payload. Fields returns the caller-supplied columns
// in declaration order, omitting unset optional ones.
type Creatable interface {
	Fields() Fields
}
