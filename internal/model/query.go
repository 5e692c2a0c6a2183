package model

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insertQuery renders INSERT INTO table (columns) VALUES (...) RETURNING
// returning, binding values in field order.
func insertQuery(table string, fields Fields, returning ...string) (string, []any) {
	return builder().Insert(table).
		Columns(fields.Columns()...).
		Values(fields.Values()...).
		Returning(returning...).
		Query()
}

// selectQuery renders SELECT columns FROM table WHERE a = ? AND b = ?.
// orderBy, when set, sorts ascending; limit <= 0 means no limit.
func selectQuery(table string, columns []string, filter Filter, orderBy string, limit int) (string, []any) {
	b := builder()
	s := b.Select(columns...).From(b.Table(table))
	if len(filter) > 0 {
		preds := make([]*entsql.Predicate, len(filter))
		for i, f := range filter {
			preds[i] = entsql.EQ(f.Column, f.Value)
		}
		s.Where(entsql.And(preds...))
	}
	if orderBy != "" {
		s.OrderBy(orderBy)
	}
	if limit > 0 {
		s.Limit(limit)
	}
	return s.Query()
}

// deleteQuery renders DELETE FROM table WHERE id = ?.
func deleteQuery(table string, id int64) (string, []any) {
	return builder().Delete(table).
		Where(entsql.EQ(columnID, id)).
		Query()
}
