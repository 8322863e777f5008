// Package storage persists household records in SQLite.
//
// The Store exposes one generic set of primitives (Insert, UpdateFields,
// Delete, Sum and the typed get/list helpers) shared by every record kind;
// the per-kind files only map rows to core types.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"household/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width UTC so lexical order in SQL equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Field is one column assignment for Insert and UpdateFields.
type Field struct {
	Column string
	Value  any
}

type Fields []Field

type tableInfo struct {
	name        string
	timestamped bool
	writable    map[string]bool
	toggles     map[string]bool
	summable    map[string]bool
}

var tables = map[core.Kind]tableInfo{
	core.KindTask: {
		name:        "tasks",
		timestamped: true,
		writable:    set("title", "notes", "done", "due_date"),
		toggles:     set("done"),
	},
	core.KindExpense: {
		name:        "expenses",
		timestamped: true,
		writable:    set("description", "amount_cents", "category", "export_status", "export_ref", "exported_at"),
		summable:    set("amount_cents"),
	},
	core.KindShoppingItem: {
		name:     "shopping_items",
		writable: set("name", "qty", "bought"),
		toggles:  set("bought"),
	},
	core.KindMember: {
		name:     "members",
		writable: set("name", "role"),
	},
}

func set(cols ...string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// Open creates the database file if needed, applies migrations and returns a
// ready Store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// DSN builds the modernc connection string: WAL so readers never block the
// writer, and a busy timeout so concurrent writers queue instead of failing.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Insert adds one row and returns its id. Timestamped tables get created_at
// from the store clock.
func (s *Store) Insert(ctx context.Context, kind core.Kind, fields Fields) (int64, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	cols, args, err := tbl.assignments(fields)
	if err != nil {
		return 0, err
	}
	if tbl.timestamped {
		cols = append(cols, "created_at")
		args = append(args, formatTime(s.now()))
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("insert %s: no fields", tbl.name)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tbl.name, strings.Join(cols, ", "), placeholders(len(cols)))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, unavailable("insert "+tbl.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("insert "+tbl.name, err)
	}
	return id, nil
}

// UpdateFields applies a partial update to one row.
func (s *Store) UpdateFields(ctx context.Context, kind core.Kind, id int64, patch Fields) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	cols, args, err := tbl.assignments(patch)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("update %s %d: empty patch", tbl.name, id)
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", tbl.name, strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return unavailable("update "+tbl.name, err)
	}
	return requireAffected(res, kind, id)
}

// Delete removes one row.
func (s *Store) Delete(ctx context.Context, kind core.Kind, id int64) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+tbl.name+" WHERE id = ?", id)
	if err != nil {
		return unavailable("delete "+tbl.name, err)
	}
	return requireAffected(res, kind, id)
}

// Sum totals an integer column; an empty table sums to 0.
func (s *Store) Sum(ctx context.Context, kind core.Kind, column string) (int64, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	if !tbl.summable[column] {
		return 0, fmt.Errorf("sum %s: column %q is not summable", tbl.name, column)
	}
	var total int64
	err = s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM("+column+"), 0) FROM "+tbl.name).Scan(&total)
	if err != nil {
		return 0, unavailable("sum "+tbl.name, err)
	}
	return total, nil
}

// Count returns the number of rows of a kind.
func (s *Store) Count(ctx context.Context, kind core.Kind) (int, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tbl.name).Scan(&n); err != nil {
		return 0, unavailable("count "+tbl.name, err)
	}
	return n, nil
}

// toggle flips a boolean column in one statement and returns the new value.
func (s *Store) toggle(ctx context.Context, kind core.Kind, column string, id int64) (bool, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	if !tbl.toggles[column] {
		return false, fmt.Errorf("toggle %s: column %q is not a flag", tbl.name, column)
	}
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s WHERE id = ? RETURNING %s", tbl.name, column, column, column)
	var v bool
	err = s.db.QueryRowContext(ctx, query, id).Scan(&v)
	if err != nil {
		return false, notFoundOr(err, kind, id, "toggle "+tbl.name)
	}
	return v, nil
}

func tableFor(kind core.Kind) (tableInfo, error) {
	tbl, ok := tables[kind]
	if !ok {
		return tableInfo{}, fmt.Errorf("unknown record kind %q", kind)
	}
	return tbl, nil
}

func (t tableInfo) assignments(fields Fields) ([]string, []any, error) {
	cols := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		if !t.writable[f.Column] {
			return nil, nil, fmt.Errorf("%s: column %q is not writable", t.name, f.Column)
		}
		cols = append(cols, f.Column)
		args = append(args, f.Value)
	}
	return cols, args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// nullString stores empty optional text as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
