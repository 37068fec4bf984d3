package auth

import (
	"context"

	"github.com/taskcur/taskcur/internal/model"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(userContextKey).(model.User)
	return u, ok
}
