// Package task implements the task ledger: the authoritative
// collection of tasks, mutable only through the lifecycle transitions
// open -> scheduled -> closed.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

// ErrEmptyTitle reports a create or update with a blank title.
var ErrEmptyTitle = errors.New("task title must not be empty")

// Draft is the pre-filled template returned by CloseAndRecreate. The
// caller submits it as a fresh Create; the draft itself creates
// nothing.
type Draft struct {
	Owner       string
	Title       string
	Description string
}

// Overview is a user's tasks grouped and ordered for presentation:
// open ascending by creation date, scheduled ascending by trigger
// date, closed descending by close date and truncated to the user's
// display count.
type Overview struct {
	Open      []model.Task
	Scheduled []model.Task
	Closed    []model.Task
}

// Ledger owns all task state. A single coarse mutex serializes
// mutations and batch scans, so readers never observe a
// partially-applied update and concurrent trigger scans cannot
// double-fire.
type Ledger struct {
	mu     sync.Mutex
	store  store.Store
	logger *log.Logger
	now    func() time.Time
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(s store.Store, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{
		store:  s,
		logger: logger.With("component", "ledger"),
		now:    time.Now,
	}
}

// Create adds a task for owner. An empty trigger date yields an open
// task; a parseable date yields a scheduled one. Returns the stored
// task with its assigned id.
func (l *Ledger) Create(
	ctx context.Context,
	owner, title, description, triggerDate string,
) (model.Task, error) {
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	trigger, err := model.ParseTriggerDate(triggerDate)
	if err != nil {
		return model.Task{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	t := model.Task{
		Owner:       owner,
		Title:       title,
		Description: description,
		TriggerDate: trigger,
		Status:      model.StatusForTrigger(trigger),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := l.store.CreateTask(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = id

	l.logger.Info("task created", "id", id, "owner", owner, "status", t.Status)
	return t, nil
}

// Get retrieves a task by id.
func (l *Ledger) Get(ctx context.Context, id int64) (model.Task, error) {
	return l.store.GetTask(ctx, id)
}

// ListForOwner returns the owner's tasks, optionally filtered by
// status. An empty status means all. Ordering is left to the caller;
// see Overview for the presentation ordering.
func (l *Ledger) ListForOwner(ctx context.Context, owner, status string) ([]model.Task, error) {
	return l.store.GetTasksForUser(ctx, owner, status)
}

// OverviewForOwner returns the owner's tasks grouped by status and
// ordered for display, with the closed group truncated to closedLimit.
func (l *Ledger) OverviewForOwner(ctx context.Context, owner string, closedLimit int) (Overview, error) {
	tasks, err := l.store.GetTasksForUser(ctx, owner, "")
	if err != nil {
		return Overview{}, err
	}

	var ov Overview
	for _, t := range tasks {
		switch t.Status {
		case model.StatusOpen:
			ov.Open = append(ov.Open, t)
		case model.StatusScheduled:
			ov.Scheduled = append(ov.Scheduled, t)
		case model.StatusClosed:
			ov.Closed = append(ov.Closed, t)
		}
	}

	ov.Open = OrderForDisplay(ov.Open, model.StatusOpen, 0)
	ov.Scheduled = OrderForDisplay(ov.Scheduled, model.StatusScheduled, 0)
	ov.Closed = OrderForDisplay(ov.Closed, model.StatusClosed, closedLimit)
	return ov, nil
}

// Update rewrites the task's title, description, and trigger date,
// recomputing the status from the trigger date.
func (l *Ledger) Update(
	ctx context.Context,
	id int64,
	title, description, triggerDate string,
) (model.Task, error) {
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	trigger, err := model.ParseTriggerDate(triggerDate)
	if err != nil {
		return model.Task{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	t.Title = title
	t.Description = description
	t.TriggerDate = trigger
	t.Status = model.StatusForTrigger(trigger)
	t.UpdatedAt = l.now().UTC()

	if err := l.store.UpdateTask(ctx, t); err != nil {
		return model.Task{}, err
	}

	l.logger.Info("task updated", "id", id, "status", t.Status)
	return t, nil
}

// Close marks the task closed and stamps its close time. Closing an
// already-closed task is a silent no-op that leaves the close time
// untouched.
func (l *Ledger) Close(ctx context.Context, id int64) (model.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, err := l.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if t.Status == model.StatusClosed {
		return t, nil
	}

	t.Status = model.StatusClosed
	t.UpdatedAt = l.now().UTC()

	if err := l.store.UpdateTask(ctx, t); err != nil {
		return model.Task{}, err
	}

	l.logger.Info("task closed", "id", id, "owner", t.Owner)
	return t, nil
}

// CloseAndRecreate closes the task and returns its pre-close title and
// description as a creation draft. The new task is created only when
// the caller submits the draft.
func (l *Ledger) CloseAndRecreate(ctx context.Context, id int64) (Draft, error) {
	t, err := l.Close(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		Owner:       t.Owner,
		Title:       t.Title,
		Description: t.Description,
	}, nil
}

// Delete removes the task permanently. There is no soft delete.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	l.logger.Info("task deleted", "id", id)
	return nil
}

// ConsumeTriggers re-opens every scheduled task whose trigger date is
// on or before now's calendar date and returns the tasks as they were
// before consumption (trigger date still set). The whole scan runs
// under the ledger lock, so two back-to-back or concurrent scans fire
// each trigger exactly once between them.
func (l *Ledger) ConsumeTriggers(ctx context.Context, now time.Time) ([]model.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	due, err := l.store.GetTriggeredTasks(ctx, dateOnly(now))
	if err != nil {
		return nil, err
	}

	fired := make([]model.Task, 0, len(due))
	for _, t := range due {
		snapshot := t

		t.TriggerDate = nil
		t.Status = model.StatusOpen
		t.UpdatedAt = l.now().UTC()
		if err := l.store.UpdateTask(ctx, t); err != nil {
			return fired, fmt.Errorf("consuming trigger for task %d: %w", t.ID, err)
		}

		fired = append(fired, snapshot)
		l.logger.Info("task trigger fired", "id", t.ID, "owner", t.Owner)
	}
	return fired, nil
}

// dateOnly truncates a time to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
