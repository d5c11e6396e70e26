package user_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/user"
)

var _ = Describe("UserService", func() {
	var (
		ctx     context.Context
		store   *docstore.MemStore
		service *user.Service
	)

	const tenant = "command-center-rep5o"

	BeforeEach(func() {
		ctx = context.Background()
		store = docstore.NewMemStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(store, tenant, logger)
	})

	Describe("EnsureProfile", func() {
		It("should create a missing profile with the default role", func() {
			profile, err := service.EnsureProfile(ctx, "uid-1", "new@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.UID).To(Equal("uid-1"))
			Expect(profile.Email).To(Equal("new@example.com"))
			Expect(profile.Tenant).To(Equal(tenant))
			Expect(profile.Roles).To(Equal([]string{string(access.DefaultRole)}))

			stored, err := service.GetByUID(ctx, "uid-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(stored.Roles).To(Equal([]string{string(access.RoleITUser)}))
		})

		It("should return an existing profile untouched", func() {
			Expect(store.Collection(user.ProfilesCollection).Set(ctx, "uid-1", map[string]any{
				"uid":       "uid-1",
				"email":     "old@example.com",
				"tenant":    tenant,
				"roles":     []string{string(access.RoleCommandCenter)},
				"createdAt": time.Now(),
			})).To(Succeed())

			profile, err := service.EnsureProfile(ctx, "uid-1", "ignored@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Email).To(Equal("old@example.com"))
			Expect(profile.Roles).To(Equal([]string{string(access.RoleCommandCenter)}))
		})

		It("should backfill the tenant on an existing profile missing one", func() {
			Expect(store.Collection(user.ProfilesCollection).Set(ctx, "uid-1", map[string]any{
				"uid":   "uid-1",
				"email": "old@example.com",
				"roles": []string{string(access.RoleSAMUser)},
			})).To(Succeed())

			profile, err := service.EnsureProfile(ctx, "uid-1", "old@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Tenant).To(Equal(tenant))

			doc, err := store.Collection(user.ProfilesCollection).Get(ctx, "uid-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(doc.String("tenant")).To(Equal(tenant))
		})
	})

	Describe("legacy role coercion", func() {
		It("should promote a legacy type field to a role set", func() {
			Expect(store.Collection(user.ProfilesCollection).Set(ctx, "uid-legacy", map[string]any{
				"uid":   "uid-legacy",
				"email": "legacy@example.com",
				"type":  string(access.RoleSAMUser),
			})).To(Succeed())

			profile, err := service.GetByUID(ctx, "uid-legacy")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(Equal([]string{string(access.RoleSAMUser)}))
		})

		It("should prefer the roles field when both are present", func() {
			Expect(store.Collection(user.ProfilesCollection).Set(ctx, "uid-both", map[string]any{
				"uid":   "uid-both",
				"roles": []string{string(access.RoleCommandCenter)},
				"type":  string(access.RoleITUser),
			})).To(Succeed())

			profile, err := service.GetByUID(ctx, "uid-both")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(Equal([]string{string(access.RoleCommandCenter)}))
		})

		It("should yield an empty role set when neither field is present", func() {
			Expect(store.Collection(user.ProfilesCollection).Set(ctx, "uid-none", map[string]any{
				"uid": "uid-none",
			})).To(Succeed())

			profile, err := service.GetByUID(ctx, "uid-none")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(BeEmpty())
		})
	})

	Describe("UpdateRoles", func() {
		It("should replace the role set", func() {
			_, err := service.EnsureProfile(ctx, "uid-1", "a@example.com")
			Expect(err).ToNot(HaveOccurred())

			newRoles := []string{string(access.RoleCommandCenter), string(access.RoleSAMUser)}
			Expect(service.UpdateRoles(ctx, "uid-1", newRoles)).To(Succeed())

			profile, err := service.GetByUID(ctx, "uid-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(Equal(newRoles))
		})

		It("should return a not-found error for a missing profile", func() {
			Expect(service.UpdateRoles(ctx, "ghost", nil)).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("WatchProfile", func() {
		It("should observe role changes live", func() {
			_, err := service.EnsureProfile(ctx, "uid-1", "a@example.com")
			Expect(err).ToNot(HaveOccurred())

			var roles [][]string
			unsubscribe, err := service.WatchProfile(ctx, "uid-1",
				func(p user.Profile, exists bool) {
					Expect(exists).To(BeTrue())
					roles = append(roles, p.Roles)
				},
				func(error) { Fail("unexpected watch error") },
			)
			Expect(err).ToNot(HaveOccurred())
			defer unsubscribe()

			Expect(service.UpdateRoles(ctx, "uid-1", []string{string(access.RoleCommandCenter)})).To(Succeed())

			Expect(roles).To(HaveLen(2))
			Expect(roles[0]).To(Equal([]string{string(access.RoleITUser)}))
			Expect(roles[1]).To(Equal([]string{string(access.RoleCommandCenter)}))
		})

		It("should report a deleted profile as gone", func() {
			_, err := service.EnsureProfile(ctx, "uid-1", "a@example.com")
			Expect(err).ToNot(HaveOccurred())

			var lastExists bool
			unsubscribe, err := service.WatchProfile(ctx, "uid-1",
				func(_ user.Profile, exists bool) { lastExists = exists },
				func(error) { Fail("unexpected watch error") },
			)
			Expect(err).ToNot(HaveOccurred())
			defer unsubscribe()

			Expect(lastExists).To(BeTrue())

			Expect(store.Collection(user.ProfilesCollection).Delete(ctx, "uid-1")).To(Succeed())
			Expect(lastExists).To(BeFalse())
		})
	})

	Describe("RoleDisplay", func() {
		It("should join the display labels", func() {
			p := user.Profile{Roles: []string{
				string(access.RoleCommandCenter),
				string(access.RoleITUser),
			}}
			Expect(p.RoleDisplay()).To(Equal("Admin, IT User"))
		})

		It("should label an empty role set", func() {
			Expect(user.Profile{}.RoleDisplay()).To(Equal("No Roles"))
		})
	})
})
