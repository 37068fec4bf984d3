package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taskcur/taskcur/internal/model"
)

// CreateTask inserts a new task and returns the id SQLite assigned.
func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			owner, title, description, trigger_date, status,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Owner, t.Title, t.Description, triggerUTC(t.TriggerDate), t.Status,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("creating task for %s: %w", t.Owner, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading new task id: %w", err)
	}
	return id, nil
}

// GetTask retrieves a single task by id.
func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := s.db.GetContext(ctx, &t, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("getting task %d: %w", id, err)
	}
	return t, nil
}

// GetTasksForUser retrieves the owner's tasks, optionally filtered by
// status. Row order is by id; callers apply display ordering.
func (s *SQLiteStore) GetTasksForUser(
	ctx context.Context,
	owner, status string,
) ([]model.Task, error) {
	query := "SELECT * FROM tasks WHERE owner = ?"
	args := []any{owner}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"

	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks for %s: %w", owner, err)
	}
	return tasks, nil
}

// UpdateTask rewrites the mutable fields of an existing task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, trigger_date = ?, status = ?,
			updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, triggerUTC(t.TriggerDate), t.Status,
		t.UpdatedAt.UTC(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", t.ID, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task permanently.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetTriggeredTasks returns scheduled tasks whose trigger date has
// arrived (trigger_date on or before asOf).
func (s *SQLiteStore) GetTriggeredTasks(
	ctx context.Context,
	asOf time.Time,
) ([]model.Task, error) {
	var tasks []model.Task
	err := s.db.SelectContext(ctx, &tasks, `
		SELECT * FROM tasks
		WHERE status = ? AND trigger_date IS NOT NULL AND trigger_date <= ?
		ORDER BY id`,
		model.StatusScheduled, asOf.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying triggered tasks: %w", err)
	}
	return tasks, nil
}

// triggerUTC normalizes an optional trigger date to UTC for storage.
func triggerUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
