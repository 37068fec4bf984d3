package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/taskcur/taskcur/internal/model"
)

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			user_name, email_address, summary_pref, trigger_pref,
			closed_display_count, password_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.EmailAddress, u.SummaryPref, u.TriggerPref,
		u.ClosedDisplayCount, u.PasswordHash,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.Name, err)
	}
	return nil
}

// GetUser retrieves a user by name.
func (s *SQLiteStore) GetUser(ctx context.Context, name string) (model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, "SELECT * FROM users WHERE user_name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("getting user %s: %w", name, err)
	}
	return u, nil
}

// GetUsers retrieves all users ordered by name.
func (s *SQLiteStore) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY user_name"); err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// UpdateUser rewrites the mutable fields of an existing user. The user
// name and password hash are not touched here; the hash has its own
// SetPasswordHash path.
func (s *SQLiteStore) UpdateUser(ctx context.Context, u model.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			email_address = ?, summary_pref = ?, trigger_pref = ?,
			closed_display_count = ?, updated_at = ?
		WHERE user_name = ?`,
		u.EmailAddress, u.SummaryPref, u.TriggerPref,
		u.ClosedDisplayCount, u.UpdatedAt.UTC(),
		u.Name,
	)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", u.Name, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", u.Name, ErrNotFound)
	}
	return nil
}

// SetPasswordHash stores a new credential hash for the user.
func (s *SQLiteStore) SetPasswordHash(
	ctx context.Context,
	name, hash string,
	updatedAt time.Time,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE user_name = ?",
		hash, updatedAt.UTC(), name,
	)
	if err != nil {
		return fmt.Errorf("setting password for %s: %w", name, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", name, ErrNotFound)
	}
	return nil
}

// DeleteUser removes a user. Foreign-key cascades remove the user's
// tasks, sessions, and notification log entries in the same statement.
func (s *SQLiteStore) DeleteUser(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE user_name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", name, err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user %s: %w", name, ErrNotFound)
	}
	return nil
}

// PurgeInactiveUsers deletes users that own no tasks and have not been
// updated since cutoff. Returns the names that were removed.
func (s *SQLiteStore) PurgeInactiveUsers(
	ctx context.Context,
	cutoff time.Time,
) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning purge transaction: %w", err)
	}
	defer tx.Rollback()

	var names []string
	err = tx.SelectContext(ctx, &names, `
		SELECT user_name FROM users
		WHERE updated_at < ?
		  AND NOT EXISTS (SELECT 1 FROM tasks WHERE tasks.owner = users.user_name)
		ORDER BY user_name`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("selecting inactive users: %w", err)
	}
	if len(names) == 0 {
		return nil, tx.Commit()
	}

	query, args, err := sqlx.In("DELETE FROM users WHERE user_name IN (?)", names)
	if err != nil {
		return nil, fmt.Errorf("expanding purge query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("purging inactive users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing purge: %w", err)
	}
	return names, nil
}
