package store

import (
	"context"
	"errors"
	"time"

	"github.com/taskcur/taskcur/internal/model"
)

// ErrNotFound reports a lookup or mutation that named a task, user, or
// session the store does not hold.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for the task ledger, the
// user directory, login sessions, and the notification log.
type Store interface {
	// === Tasks ===

	// CreateTask inserts the task and returns its assigned id.
	CreateTask(ctx context.Context, t model.Task) (int64, error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	// GetTasksForUser returns the owner's tasks, optionally filtered
	// by status. An empty status means all statuses.
	GetTasksForUser(ctx context.Context, owner, status string) ([]model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id int64) error
	// GetTriggeredTasks returns scheduled tasks whose trigger date is
	// on or before asOf.
	GetTriggeredTasks(ctx context.Context, asOf time.Time) ([]model.Task, error)

	// === Users ===

	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, name string) (model.User, error)
	GetUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u model.User) error
	SetPasswordHash(ctx context.Context, name, hash string, updatedAt time.Time) error
	// DeleteUser removes the user and, through foreign keys, every
	// task, session, and notification it owns.
	DeleteUser(ctx context.Context, name string) error
	// PurgeInactiveUsers deletes users with no tasks whose last
	// update is before cutoff. Returns the purged user names.
	PurgeInactiveUsers(ctx context.Context, cutoff time.Time) ([]string, error)

	// === Sessions ===

	CreateSession(ctx context.Context, s model.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (model.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, asOf time.Time) (int64, error)

	// === Notification log ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotificationsForUser(ctx context.Context, name string) ([]model.Notification, error)

	Close() error
}
