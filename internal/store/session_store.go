package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskcur/taskcur/internal/model"
)

// CreateSession inserts a new login session. Generates a UUID if the
// ID is empty.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess model.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_name, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserName, sess.TokenHash,
		sess.CreatedAt.UTC(), sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating session for %s: %w", sess.UserName, err)
	}
	return nil
}

// GetSessionByTokenHash retrieves a session by the hash of its bearer
// token.
func (s *SQLiteStore) GetSessionByTokenHash(
	ctx context.Context,
	tokenHash string,
) (model.Session, error) {
	var sess model.Session
	err := s.db.GetContext(ctx, &sess,
		"SELECT * FROM sessions WHERE token_hash = ?", tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// DeleteSessionByTokenHash revokes the session carrying the given
// token hash. Missing sessions are not an error; logout is idempotent.
func (s *SQLiteStore) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE token_hash = ?", tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired before asOf
// and returns how many were removed.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context, asOf time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?", asOf.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
