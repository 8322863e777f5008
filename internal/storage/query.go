package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"household/internal/core"
)

// Order selects the listing sort key.
type Order int

const (
	OrderID Order = iota
	OrderCreatedAt
)

// Query describes a listing. Limit <= 0 means unbounded.
type Query struct {
	OrderBy Order
	Desc    bool
	Limit   int
}

// Recent is the newest-first listing used by the dashboard and list pages.
func Recent(limit int) Query {
	return Query{OrderBy: OrderCreatedAt, Desc: true, Limit: limit}
}

// Newest lists by id, newest first, for tables without a creation time.
func Newest(limit int) Query {
	return Query{OrderBy: OrderID, Desc: true, Limit: limit}
}

func (q Query) clause(tbl tableInfo) (string, []any, error) {
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	var order string
	switch q.OrderBy {
	case OrderID:
		order = " ORDER BY id " + dir
	case OrderCreatedAt:
		if !tbl.timestamped {
			return "", nil, fmt.Errorf("list %s: table has no created_at", tbl.name)
		}
		// Rows created within the same clock tick keep insertion order.
		order = " ORDER BY created_at " + dir + ", id " + dir
	default:
		return "", nil, fmt.Errorf("list %s: unknown order %d", tbl.name, q.OrderBy)
	}
	if q.Limit > 0 {
		return order + " LIMIT ?", []any{q.Limit}, nil
	}
	return order, nil, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// table binds a record kind to its select list and row mapper.
type table[T any] struct {
	kind    core.Kind
	columns string
	scan    func(rowScanner) (T, error)
}

func get[T any](ctx context.Context, s *Store, t table[T], id int64) (T, error) {
	var zero T
	tbl, err := tableFor(t.kind)
	if err != nil {
		return zero, err
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+t.columns+" FROM "+tbl.name+" WHERE id = ?", id)
	v, err := t.scan(row)
	if err != nil {
		return zero, notFoundOr(err, t.kind, id, "get "+tbl.name)
	}
	return v, nil
}

func list[T any](ctx context.Context, s *Store, t table[T], q Query, where string, whereArgs ...any) ([]T, error) {
	tbl, err := tableFor(t.kind)
	if err != nil {
		return nil, err
	}
	clause, args, err := q.clause(tbl)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + t.columns + " FROM " + tbl.name
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := s.db.QueryContext(ctx, query+clause, append(whereArgs, args...)...)
	if err != nil {
		return nil, unavailable("list "+tbl.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", tbl.name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+tbl.name, err)
	}
	return out, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

func notFoundOr(err error, kind core.Kind, id int64, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return unavailable(op, err)
}

func requireAffected(res sql.Result, kind core.Kind, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return nil
}
