package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/user"
)

// ProfileStore is the slice of the user service the auth flow needs:
// resolve-or-create on first authentication.
type ProfileStore interface {
	EnsureProfile(ctx context.Context, uid, email string) (user.Profile, error)
	GetByUID(ctx context.Context, uid string) (user.Profile, error)
}

// TokenGenerator issues and validates API access tokens.
type TokenGenerator interface {
	GenerateAccessToken(uid, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Service implements the two identity endpoints: both forward
// credentials to the external provider's admin API and mint a custom
// token, then resolve the Command Center profile.
type Service struct {
	provider ProviderAPI
	profiles ProfileStore
	tokens   TokenGenerator
	logger   *slog.Logger
}

func NewService(provider ProviderAPI, profiles ProfileStore, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
		tokens:   tokens,
		logger:   logger,
	}
}

// SignIn looks the account up in the requested tenant and mints a
// custom token. The password itself is verified by the provider when
// the client exchanges the custom token; this endpoint only proves the
// account exists in the tenant.
func (s *Service) SignIn(ctx context.Context, dto CredentialsDTO) (Session, error) {
	if err := dto.Validate(); err != nil {
		return Session{}, err
	}

	account, err := s.provider.GetUserByEmail(ctx, dto.TenantID, dto.Email)
	if err != nil {
		s.logger.Warn("sign-in lookup failed", "tenant_id", dto.TenantID, "error", err)
		return Session{}, err
	}

	return s.establishSession(ctx, dto.TenantID, account)
}

// SignUp creates the account inside the tenant and establishes a
// session for it.
func (s *Service) SignUp(ctx context.Context, dto CredentialsDTO) (Session, error) {
	if err := dto.Validate(); err != nil {
		return Session{}, err
	}

	account, err := s.provider.CreateUser(ctx, dto.TenantID, dto.Email, dto.Password)
	if err != nil {
		s.logger.Warn("sign-up failed", "tenant_id", dto.TenantID, "error", err)
		return Session{}, err
	}

	return s.establishSession(ctx, dto.TenantID, account)
}

func (s *Service) establishSession(ctx context.Context, tenantID string, account ProviderUser) (Session, error) {
	customToken, err := s.provider.MintCustomToken(ctx, tenantID, account.UID)
	if err != nil {
		return Session{}, err
	}

	if _, err := s.profiles.EnsureProfile(ctx, account.UID, account.Email); err != nil {
		return Session{}, internal.NewInternalError("resolve user profile", err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(account.UID, account.Email)
	if err != nil {
		return Session{}, internal.NewInternalError("generate access token", err)
	}

	s.logger.Info("session established", "uid", account.UID, "tenant_id", tenantID)

	return Session{
		UID:         account.UID,
		Email:       account.Email,
		TenantID:    tenantID,
		CustomToken: customToken,
		AccessToken: accessToken,
	}, nil
}

// ValidateAccessToken validates an API token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// ProfileForUID loads the normalized profile backing a validated token.
func (s *Service) ProfileForUID(ctx context.Context, uid string) (user.Profile, error) {
	return s.profiles.GetByUID(ctx, uid)
}

// Claims are the access-token claims.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTTokenGenerator signs access tokens with an HMAC session secret.
type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(uid, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidToken
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
