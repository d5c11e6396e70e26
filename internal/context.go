package internal

import (
	"context"
	"time"
)

type ctxKey string

const contextUserKey ctxKey = "sessionUser"

// SessionUser is the authenticated identity attached to a request context
// by the auth middleware. Roles are the normalized role grants from the
// user's profile record.
type SessionUser struct {
	UID   string
	Email string
	Roles []string
}

func ContextWithUser(ctx context.Context, user *SessionUser) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(contextUserKey).(*SessionUser)
	return user, ok && user != nil
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
