package model

import "time"

// Session is a server-side login session. Only the SHA-256 hash of the
// bearer token is persisted; the token itself lives in the cookie.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserName  string    `json:"user_name" db:"user_name"`
	TokenHash string    `json:"-" db:"token_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
