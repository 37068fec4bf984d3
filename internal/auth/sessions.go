package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

var (
	// ErrInvalidLogin covers both an unknown user name and a wrong
	// password, so a failed login never reveals which it was.
	ErrInvalidLogin = errors.New("invalid user name or password")

	// ErrPasswordNotSet means the account exists but predates
	// password authentication; the caller should route the user to
	// first-time password setup.
	ErrPasswordNotSet = errors.New("password not set for this account")
)

// Sessions issues and verifies login sessions. Tokens are random; only
// their SHA-256 hashes are persisted.
type Sessions struct {
	store  store.Store
	logger *log.Logger
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session service with the given lifetime.
func NewSessions(s store.Store, ttl time.Duration, logger *log.Logger) *Sessions {
	if logger == nil {
		logger = log.Default()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Sessions{
		store:  s,
		logger: logger.With("component", "sessions"),
		ttl:    ttl,
		now:    time.Now,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// Login verifies the password and issues a new session token. A
// missing user and a wrong password both come back as ErrInvalidLogin;
// an account with no credential comes back as ErrPasswordNotSet.
func (s *Sessions) Login(ctx context.Context, userName, password string) (string, time.Time, error) {
	u, err := s.store.GetUser(ctx, userName)
	if errors.Is(err, store.ErrNotFound) {
		return "", time.Time{}, ErrInvalidLogin
	}
	if err != nil {
		return "", time.Time{}, err
	}

	if NeedsSetup(u) {
		return "", time.Time{}, ErrPasswordNotSet
	}
	if !VerifyPassword(password, u.PasswordHash) {
		s.logger.Warn("failed login", "user", userName)
		return "", time.Time{}, ErrInvalidLogin
	}

	return s.issue(ctx, userName)
}

// Issue creates a session for a user that was just authenticated by
// other means (first-time password setup).
func (s *Sessions) Issue(ctx context.Context, userName string) (string, time.Time, error) {
	return s.issue(ctx, userName)
}

func (s *Sessions) issue(ctx context.Context, userName string) (string, time.Time, error) {
	token, err := generateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now().UTC()
	expires := now.Add(s.ttl)
	sess := model.Session{
		UserName:  userName,
		TokenHash: hashToken(token),
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info("session issued", "user", userName)
	return token, expires, nil
}

// Authenticate resolves a bearer token to its user. Expired sessions
// are revoked on sight.
func (s *Sessions) Authenticate(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrInvalidLogin
	}

	hash := hashToken(token)
	sess, err := s.store.GetSessionByTokenHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, ErrInvalidLogin
	}
	if err != nil {
		return model.User{}, err
	}

	if sess.Expired(s.now()) {
		_ = s.store.DeleteSessionByTokenHash(ctx, hash)
		return model.User{}, ErrInvalidLogin
	}

	u, err := s.store.GetUser(ctx, sess.UserName)
	if errors.Is(err, store.ErrNotFound) {
		// The account was deleted out from under the session.
		_ = s.store.DeleteSessionByTokenHash(ctx, hash)
		return model.User{}, ErrInvalidLogin
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout revokes the session carrying the token. Revoking a token
// that no longer exists is not an error.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSessionByTokenHash(ctx, hashToken(token))
}

// Sweep deletes expired sessions and returns how many were removed.
func (s *Sessions) Sweep(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}
