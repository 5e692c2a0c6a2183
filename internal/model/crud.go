package model

import (
	"context"
	"database/sql"
	"fmt"
)

// Table names a table, the entity name used in errors, and its managed
// columns.
type Table struct {
	Name     string
	Entity   string
	Behavior Behavior
}

// Descriptor binds a Table to a read entity E: the columns a read selects
// (in declaration order) and how one row becomes an E.
type Descriptor[E any] struct {
	Table
	Columns []string
	Decode  func(d *Decoder) E
}

func (desc Descriptor[E]) decode(values []any) (E, error) {
	d := newDecoder(desc.Entity, desc.Columns, values)
	e := desc.Decode(d)
	if err := d.Err(); err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// fetch runs query and returns every row as raw driver values. Errors are
// the driver's, unwrapped.
func fetch(ctx context.Context, q querier, query string, args []any, width int) ([][]any, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		values := make([]any, width)
		dest := make([]any, width)
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func insertID(ctx context.Context, q querier, query string, args []any) (int64, error) {
	rows, err := fetch(ctx, q, query, args, 1)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("insert returned %d rows", len(rows))
	}
	id, ok := rows[0][0].(int64)
	if !ok {
		return 0, fmt.Errorf("insert returned id of type %T", rows[0][0])
	}
	return id, nil
}

func (m *Manager) prepare(table Table, c Creatable) (Fields, error) {
	fields, err := m.inject(table.Behavior, c.Fields())
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("create %s: no fields", table.Entity)
	}
	return fields, nil
}

// Create inserts c into table and returns the new id.
func Create[C Creatable](ctx context.Context, mm *Manager, table Table, c C) (int64, error) {
	fields, err := mm.prepare(table, c)
	if err != nil {
		return 0, err
	}
	query, args := insertQuery(table.Name, fields, columnID)

	var id int64
	err = mm.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		id, err = insertID(ctx, conn, query, args)
		return err
	})
	if err != nil {
		return 0, newQueryError("create", table.Entity, err)
	}
	return id, nil
}

// CreateReturn inserts c and returns the stored row, system fields included.
func CreateReturn[E any, C Creatable](ctx context.Context, mm *Manager, desc Descriptor[E], c C) (E, error) {
	var zero E
	fields, err := mm.prepare(desc.Table, c)
	if err != nil {
		return zero, err
	}
	query, args := insertQuery(desc.Name, fields, desc.Columns...)

	var rows [][]any
	err = mm.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		rows, err = fetch(ctx, conn, query, args, len(desc.Columns))
		return err
	})
	if err != nil {
		return zero, newQueryError("create", desc.Entity, err)
	}
	if len(rows) != 1 {
		return zero, newQueryError("create", desc.Entity, fmt.Errorf("insert returned %d rows", len(rows)))
	}
	return desc.decode(rows[0])
}

// CreateMultiple inserts every element of cs in one transaction and returns
// the ids in input order. Either all rows are stored or none is. Empty input
// returns an empty slice without touching the database.
func CreateMultiple[C Creatable](ctx context.Context, mm *Manager, table Table, cs []C) ([]int64, error) {
	if len(cs) == 0 {
		return []int64{}, nil
	}

	type statement struct {
		query string
		args  []any
	}
	statements := make([]statement, len(cs))
	var first Fields
	for i, c := range cs {
		fields, err := mm.prepare(table, c)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = fields
		} else if !sameColumns(first, fields) {
			return nil, fmt.Errorf("create %s row %d: %w", table.Entity, i, ErrColumnMismatch)
		}
		statements[i].query, statements[i].args = insertQuery(table.Name, fields, columnID)
	}

	ids := make([]int64, len(cs))
	err := mm.withConn(ctx, func(conn *sql.Conn) error {
		return inTx(ctx, conn, func(tx *sql.Tx) error {
			for i, st := range statements {
				id, err := insertID(ctx, tx, st.query, st.args)
				if err != nil {
					return err
				}
				ids[i] = id
			}
			return nil
		})
	})
	if err != nil {
		return nil, newQueryError("create_multiple", table.Entity, err)
	}
	return ids, nil
}

// Get returns the row with the given id or an *EntityNotFoundError.
func Get[E any](ctx context.Context, mm *Manager, desc Descriptor[E], id int64) (E, error) {
	e, ok, err := first(ctx, mm, desc, Eq(columnID, id), "get")
	if err != nil {
		return e, err
	}
	if !ok {
		return e, &EntityNotFoundError{Entity: desc.Entity, ID: id}
	}
	return e, nil
}

// First returns the first row matching filter. ok is false when none does.
func First[E any](ctx context.Context, mm *Manager, desc Descriptor[E], filter Filter) (e E, ok bool, err error) {
	return first(ctx, mm, desc, filter, "first")
}

func first[E any](ctx context.Context, mm *Manager, desc Descriptor[E], filter Filter, op string) (E, bool, error) {
	var zero E
	query, args := selectQuery(desc.Name, desc.Columns, filter, columnID, 1)

	var rows [][]any
	err := mm.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		rows, err = fetch(ctx, conn, query, args, len(desc.Columns))
		return err
	})
	if err != nil {
		return zero, false, newQueryError(op, desc.Entity, err)
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	e, err := desc.decode(rows[0])
	if err != nil {
		return zero, false, err
	}
	return e, true, nil
}

// List returns every row matching filter, sorted ascending by orderBy
// (primary key when empty).
func List[E any](ctx context.Context, mm *Manager, desc Descriptor[E], filter Filter, orderBy string) ([]E, error) {
	if orderBy == "" {
		orderBy = columnID
	}
	query, args := selectQuery(desc.Name, desc.Columns, filter, orderBy, 0)

	var rows [][]any
	err := mm.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		rows, err = fetch(ctx, conn, query, args, len(desc.Columns))
		return err
	})
	if err != nil {
		return nil, newQueryError("list", desc.Entity, err)
	}

	out := make([]E, 0, len(rows))
	for _, values := range rows {
		e, err := desc.decode(values)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Delete removes the row with the given id. Deleting a missing row returns
// an *EntityNotFoundError.
func Delete(ctx context.Context, mm *Manager, table Table, id int64) error {
	query, args := deleteQuery(table.Name, id)

	var affected int64
	err := mm.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return newQueryError("delete", table.Entity, err)
	}
	if affected == 0 {
		return &EntityNotFoundError{Entity: table.Entity, ID: id}
	}
	return nil
}

// inTx runs fn in a transaction on conn, rolling back on error or panic.
func inTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
