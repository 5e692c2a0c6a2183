package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var errNullValue = errors.New("unexpected NULL")

// Decoder reads one fetched row by column name. The first failure is kept
// and returned by Err; later reads return zero values.
type Decoder struct {
	entity  string
	columns []string
	values  []any
	err     error
}

func newDecoder(entity string, columns []string, values []any) *Decoder {
	return &Decoder{entity: entity, columns: columns, values: values}
}

// Err returns the first decoding failure as a *DecodeError.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) fail(column string, err error) {
	if d.err == nil {
		d.err = &DecodeError{Entity: d.entity, Column: column, Err: err}
	}
}

func (d *Decoder) value(column string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	for i, c := range d.columns {
		if c == column {
			return d.values[i], true
		}
	}
	d.fail(column, errors.New("column not selected"))
	return nil, false
}

// Int64 reads an INTEGER column.
func (d *Decoder) Int64(column string) int64 {
	v, ok := d.value(column)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case nil:
		d.fail(column, errNullValue)
	default:
		d.fail(column, fmt.Errorf("expected integer, got %T", v))
	}
	return 0
}

// String reads a TEXT column. BLOB values are accepted as text.
func (d *Decoder) String(column string) string {
	v, ok := d.value(column)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		d.fail(column, errNullValue)
	default:
		d.fail(column, fmt.Errorf("expected text, got %T", v))
	}
	return ""
}

// OptionalString reads a nullable TEXT column and returns nil for NULL.
func (d *Decoder) OptionalString(column string) *string {
	v, ok := d.value(column)
	if !ok || v == nil {
		return nil
	}
	s := d.String(column)
	if d.err != nil {
		return nil
	}
	return &s
}

// Time reads a timestamp stored either natively or as text, in UTC.
func (d *Decoder) Time(column string) time.Time {
	v, ok := d.value(column)
	if !ok {
		return time.Time{}
	}
	if t, isTime := v.(time.Time); isTime {
		return t.UTC()
	}
	s := d.String(column)
	if d.err != nil {
		return time.Time{}
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		d.fail(column, err)
	}
	return t
}

// Date reads a calendar date column.
func (d *Decoder) Date(column string) Date {
	v, ok := d.value(column)
	if !ok {
		return Date{}
	}
	if v == nil {
		d.fail(column, errNullValue)
		return Date{}
	}
	var date Date
	if err := date.Scan(v); err != nil {
		d.fail(column, err)
	}
	return date
}

// UUID reads a uuid stored as 16 raw bytes or as its text form.
func (d *Decoder) UUID(column string) uuid.UUID {
	v, ok := d.value(column)
	if !ok {
		return uuid.Nil
	}
	if b, isBytes := v.([]byte); isBytes && len(b) == 16 {
		id, err := uuid.FromBytes(b)
		if err != nil {
			d.fail(column, err)
		}
		return id
	}
	s := d.String(column)
	if d.err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		d.fail(column, err)
	}
	return id
}
