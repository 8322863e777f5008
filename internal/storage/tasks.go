package storage

import (
	"context"
	"database/sql"
	"fmt"

	"household/internal/core"
)

var taskTable = table[core.Task]{
	kind:    core.KindTask,
	columns: "id, title, notes, done, due_date, created_at",
	scan:    scanTask,
}

func scanTask(row rowScanner) (core.Task, error) {
	var (
		t         core.Task
		notes     sql.NullString
		due       sql.NullString
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &notes, &t.Done, &due, &createdAt); err != nil {
		return core.Task{}, err
	}
	t.Notes = notes.String
	created, err := parseTime(createdAt)
	if err != nil {
		return core.Task{}, fmt.Errorf("task %d created_at: %w", t.ID, err)
	}
	t.CreatedAt = created
	if due.Valid {
		d, err := parseTime(due.String)
		if err != nil {
			return core.Task{}, fmt.Errorf("task %d due_date: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

// CreateTask inserts a new open task.
func (s *Store) CreateTask(ctx context.Context, t core.Task) (int64, error) {
	return s.Insert(ctx, core.KindTask, Fields{
		{"title", t.Title},
		{"notes", nullString(t.Notes)},
		{"done", false},
		{"due_date", nullTime(t.DueDate)},
	})
}

func (s *Store) GetTask(ctx context.Context, id int64) (core.Task, error) {
	return get(ctx, s, taskTable, id)
}

func (s *Store) ListTasks(ctx context.Context, q Query) ([]core.Task, error) {
	return list(ctx, s, taskTable, q, "")
}

// ToggleTask flips done and returns the new value.
func (s *Store) ToggleTask(ctx context.Context, id int64) (bool, error) {
	return s.toggle(ctx, core.KindTask, "done", id)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.Delete(ctx, core.KindTask, id)
}
