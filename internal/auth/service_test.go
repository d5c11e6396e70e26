package auth_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/auth"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/user"
)

// Fake identity provider for testing
type fakeProvider struct {
	accounts      map[string]auth.ProviderUser // keyed by tenant+"/"+email
	nextUID       int
	lookupErr     error
	createErr     error
	mintErr       error
	mintedTokens  int
	createdEmails []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: make(map[string]auth.ProviderUser), nextUID: 1}
}

func (f *fakeProvider) seed(tenantID, email, uid string) {
	f.accounts[tenantID+"/"+email] = auth.ProviderUser{UID: uid, Email: email}
}

func (f *fakeProvider) GetUserByEmail(_ context.Context, tenantID, email string) (auth.ProviderUser, error) {
	if f.lookupErr != nil {
		return auth.ProviderUser{}, f.lookupErr
	}
	account, ok := f.accounts[tenantID+"/"+email]
	if !ok {
		return auth.ProviderUser{}, internal.ErrInvalidCredentials
	}
	return account, nil
}

func (f *fakeProvider) CreateUser(_ context.Context, tenantID, email, _ string) (auth.ProviderUser, error) {
	if f.createErr != nil {
		return auth.ProviderUser{}, f.createErr
	}
	uid := "uid-" + email
	account := auth.ProviderUser{UID: uid, Email: email}
	f.accounts[tenantID+"/"+email] = account
	f.createdEmails = append(f.createdEmails, email)
	return account, nil
}

func (f *fakeProvider) MintCustomToken(_ context.Context, tenantID, uid string) (string, error) {
	if f.mintErr != nil {
		return "", f.mintErr
	}
	f.mintedTokens++
	return "custom-token-" + uid, nil
}

var _ = Describe("AuthService", func() {
	var (
		ctx      context.Context
		provider *fakeProvider
		profiles *user.Service
		store    *docstore.MemStore
		service  *auth.Service
	)

	const tenant = "command-center-rep5o"

	creds := auth.CredentialsDTO{
		Email:    "someone@example.com",
		Password: "secret",
		TenantID: tenant,
	}

	BeforeEach(func() {
		ctx = context.Background()
		provider = newFakeProvider()
		store = docstore.NewMemStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		profiles = user.NewService(store, tenant, logger)
		tokens := auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", 15*time.Minute)
		service = auth.NewService(provider, profiles, tokens, logger)
	})

	Describe("SignIn", func() {
		It("should establish a session for an existing account", func() {
			provider.seed(tenant, creds.Email, "uid-1")

			session, err := service.SignIn(ctx, creds)
			Expect(err).ToNot(HaveOccurred())
			Expect(session.UID).To(Equal("uid-1"))
			Expect(session.Email).To(Equal(creds.Email))
			Expect(session.TenantID).To(Equal(tenant))
			Expect(session.CustomToken).To(Equal("custom-token-uid-1"))
			Expect(session.AccessToken).ToNot(BeEmpty())
		})

		It("should create the profile with the default role on first sign-in", func() {
			provider.seed(tenant, creds.Email, "uid-1")

			_, err := service.SignIn(ctx, creds)
			Expect(err).ToNot(HaveOccurred())

			profile, err := profiles.GetByUID(ctx, "uid-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(Equal([]string{string(access.DefaultRole)}))
			Expect(profile.Tenant).To(Equal(tenant))
		})

		It("should keep the existing profile's roles on a later sign-in", func() {
			provider.seed(tenant, creds.Email, "uid-1")
			_, err := service.SignIn(ctx, creds)
			Expect(err).ToNot(HaveOccurred())

			Expect(profiles.UpdateRoles(ctx, "uid-1", []string{string(access.RoleCommandCenter)})).To(Succeed())

			_, err = service.SignIn(ctx, creds)
			Expect(err).ToNot(HaveOccurred())

			profile, err := profiles.GetByUID(ctx, "uid-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(profile.Roles).To(Equal([]string{string(access.RoleCommandCenter)}))
		})

		It("should reject incomplete credentials", func() {
			_, err := service.SignIn(ctx, auth.CredentialsDTO{Email: "a@b.c"})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
		})

		It("should pass the provider's error through for an unknown account", func() {
			_, err := service.SignIn(ctx, creds)
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})
	})

	Describe("SignUp", func() {
		It("should create the account and establish a session", func() {
			session, err := service.SignUp(ctx, creds)
			Expect(err).ToNot(HaveOccurred())
			Expect(session.UID).To(Equal("uid-" + creds.Email))
			Expect(provider.createdEmails).To(Equal([]string{creds.Email}))
			Expect(provider.mintedTokens).To(Equal(1))
		})

		It("should reject incomplete credentials before touching the provider", func() {
			_, err := service.SignUp(ctx, auth.CredentialsDTO{TenantID: tenant})
			Expect(err).To(HaveOccurred())
			Expect(provider.createdEmails).To(BeEmpty())
		})
	})

	Describe("access tokens", func() {
		It("should validate a freshly issued token", func() {
			provider.seed(tenant, creds.Email, "uid-1")
			session, err := service.SignIn(ctx, creds)
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateAccessToken(session.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UID).To(Equal("uid-1"))
			Expect(claims.Email).To(Equal(creds.Email))
		})

		It("should reject a garbage token", func() {
			_, err := service.ValidateAccessToken("not.a.token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("should reject an expired token", func() {
			expired := auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Nanosecond)
			token, err := expired.GenerateAccessToken("uid-1", creds.Email)
			Expect(err).ToNot(HaveOccurred())

			time.Sleep(10 * time.Millisecond)

			_, err = expired.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("should reject a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("ffffffffffffffffffffffffffffffff", 15*time.Minute)
			token, err := other.GenerateAccessToken("uid-1", creds.Email)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})

var _ = Describe("SessionStore", func() {
	var (
		ctx      context.Context
		store    *docstore.MemStore
		profiles *user.Service
		sessions *auth.SessionStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = docstore.NewMemStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		profiles = user.NewService(store, "command-center-rep5o", logger)
		sessions = auth.NewSessionStore(profiles, logger)
	})

	It("should deliver the current roles on open and track changes", func() {
		_, err := profiles.EnsureProfile(ctx, "uid-1", "a@example.com")
		Expect(err).ToNot(HaveOccurred())

		var delivered [][]string
		unsubscribe, err := sessions.Open(ctx, "uid-1",
			func(roles []string) { delivered = append(delivered, roles) },
			func(error) { Fail("unexpected session error") },
		)
		Expect(err).ToNot(HaveOccurred())
		defer unsubscribe()

		Expect(delivered).To(HaveLen(1))
		Expect(sessions.Roles()).To(Equal([]string{string(access.DefaultRole)}))

		Expect(profiles.UpdateRoles(ctx, "uid-1", []string{string(access.RoleCommandCenter)})).To(Succeed())

		Expect(delivered).To(HaveLen(2))
		Expect(sessions.Roles()).To(Equal([]string{string(access.RoleCommandCenter)}))
	})

	It("should report empty roles when the profile is deleted mid-session", func() {
		_, err := profiles.EnsureProfile(ctx, "uid-1", "a@example.com")
		Expect(err).ToNot(HaveOccurred())

		unsubscribe, err := sessions.Open(ctx, "uid-1",
			func([]string) {},
			func(error) { Fail("unexpected session error") },
		)
		Expect(err).ToNot(HaveOccurred())
		defer unsubscribe()

		Expect(store.Collection(user.ProfilesCollection).Delete(ctx, "uid-1")).To(Succeed())

		Expect(sessions.Roles()).To(BeEmpty())
	})
})
