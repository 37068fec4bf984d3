package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskcur/taskcur/internal/model"
)

// CreateNotification appends a record of a sent email to the
// notification log. Generates a UUID if the ID is empty.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_name, task_id, kind, subject, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserName, n.TaskID, n.Kind, n.Subject, n.SentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording notification for %s: %w", n.UserName, err)
	}
	return nil
}

// GetNotificationsForUser retrieves the user's notification log,
// newest first.
func (s *SQLiteStore) GetNotificationsForUser(
	ctx context.Context,
	name string,
) ([]model.Notification, error) {
	var out []model.Notification
	err := s.db.SelectContext(ctx, &out, `
		SELECT * FROM notifications
		WHERE user_name = ?
		ORDER BY sent_at DESC, id`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for %s: %w", name, err)
	}
	return out, nil
}
