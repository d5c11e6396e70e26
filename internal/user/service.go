package user

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/docstore"
)

// Service owns the profile collection: resolve-or-create on first
// authentication, role updates, and the live views the session store
// and the user-management screen consume.
type Service struct {
	profiles docstore.Collection
	tenant   string
	logger   *slog.Logger
}

func NewService(store docstore.Store, tenant string, logger *slog.Logger) *Service {
	return &Service{
		profiles: store.Collection(ProfilesCollection),
		tenant:   tenant,
		logger:   logger,
	}
}

// GetByUID returns the profile keyed by the provider uid.
func (s *Service) GetByUID(ctx context.Context, uid string) (Profile, error) {
	doc, err := s.profiles.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Profile{}, internal.ErrUserNotFound
		}
		return Profile{}, err
	}
	return profileFromDocument(doc), nil
}

// EnsureProfile resolves the profile for an identity, creating it with
// the default role when the identity authenticates for the first time.
// Existing profiles missing a tenant tag are backfilled.
func (s *Service) EnsureProfile(ctx context.Context, uid, email string) (Profile, error) {
	doc, err := s.profiles.Get(ctx, uid)
	if err == nil {
		profile := profileFromDocument(doc)
		if profile.Tenant == "" {
			if err := s.profiles.Update(ctx, uid, map[string]any{"tenant": s.tenant}); err != nil {
				s.logger.Warn("failed to backfill profile tenant", "uid", uid, "error", err)
			} else {
				profile.Tenant = s.tenant
			}
		}
		return profile, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, err
	}

	now := time.Now()
	fields := map[string]any{
		"email":     email,
		"uid":       uid,
		"tenant":    s.tenant,
		"roles":     []string{string(access.DefaultRole)},
		"createdAt": now,
	}
	if err := s.profiles.Set(ctx, uid, fields); err != nil {
		s.logger.Error("failed to create profile", "uid", uid, "error", err)
		return Profile{}, err
	}

	s.logger.Info("profile created with default role",
		"uid", uid,
		"email", email,
		"role", access.DefaultRole)

	return Profile{
		ID:        uid,
		Email:     email,
		UID:       uid,
		Tenant:    s.tenant,
		CreatedAt: now,
		Roles:     []string{string(access.DefaultRole)},
	}, nil
}

// UpdateRoles replaces a profile's role set.
func (s *Service) UpdateRoles(ctx context.Context, id string, roles []string) error {
	if roles == nil {
		roles = []string{}
	}
	err := s.profiles.Update(ctx, id, map[string]any{"roles": roles})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return internal.ErrUserNotFound
		}
		s.logger.Error("failed to update roles", "user_id", id, "error", err)
		return err
	}

	s.logger.Info("user roles updated", "user_id", id, "roles", roles)
	return nil
}

// List returns every profile, newest first.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	docs, err := s.profiles.Find(ctx, docstore.Query{})
	if err != nil {
		return nil, err
	}
	return sortedProfiles(docs), nil
}

// WatchAll subscribes to the full profile list, newest first. Role
// normalization is applied per snapshot.
func (s *Service) WatchAll(ctx context.Context, onData func([]Profile), onError func(error)) (docstore.Unsubscribe, error) {
	return s.profiles.Watch(ctx, docstore.Query{}, func(docs []docstore.Document) {
		onData(sortedProfiles(docs))
	}, onError)
}

// WatchProfile subscribes to a single identity's profile so role
// changes made while a session is open are observed live.
func (s *Service) WatchProfile(ctx context.Context, uid string, onProfile func(Profile, bool), onError func(error)) (docstore.Unsubscribe, error) {
	q := docstore.Query{}.Where("uid", uid)
	return s.profiles.Watch(ctx, q, func(docs []docstore.Document) {
		if len(docs) == 0 {
			onProfile(Profile{}, false)
			return
		}
		onProfile(profileFromDocument(docs[0]), true)
	}, onError)
}

// sortedProfiles normalizes and orders by creation time descending; the
// sort runs client-side because createdAt is missing from some legacy
// records.
func sortedProfiles(docs []docstore.Document) []Profile {
	profiles := make([]Profile, 0, len(docs))
	for _, d := range docs {
		profiles = append(profiles, profileFromDocument(d))
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles
}
