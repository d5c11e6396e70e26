package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/user"
)

// ProfileWatcher is how the session store observes a profile record.
type ProfileWatcher interface {
	WatchProfile(ctx context.Context, uid string, onProfile func(user.Profile, bool), onError func(error)) (docstore.Unsubscribe, error)
}

// SessionStore tracks one authenticated identity's role grants for the
// lifetime of a session. Strictly push-driven: no polling, roles change
// only when the live profile subscription delivers a new snapshot.
type SessionStore struct {
	profiles ProfileWatcher
	logger   *slog.Logger

	mu    sync.RWMutex
	roles []string
}

func NewSessionStore(profiles ProfileWatcher, logger *slog.Logger) *SessionStore {
	return &SessionStore{profiles: profiles, logger: logger}
}

// Open subscribes to the identity's profile. onRoles fires with the
// normalized role set on the initial read and after every change; a
// deleted profile yields an empty set. The returned handle must be
// called on session teardown.
func (s *SessionStore) Open(ctx context.Context, uid string, onRoles func([]string), onError func(error)) (docstore.Unsubscribe, error) {
	return s.profiles.WatchProfile(ctx, uid, func(p user.Profile, exists bool) {
		roles := p.Roles
		if !exists {
			s.logger.Warn("profile disappeared while session open", "uid", uid)
			roles = []string{}
		}
		s.mu.Lock()
		s.roles = roles
		s.mu.Unlock()
		onRoles(roles)
	}, func(err error) {
		s.logger.Error("profile subscription failed", "uid", uid, "error", err)
		onError(err)
	})
}

// Roles returns the most recently delivered role set.
func (s *SessionStore) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.roles))
	copy(out, s.roles)
	return out
}
