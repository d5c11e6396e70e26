package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	internal "github.com/wedflix/command-center/internal"
)

// ProviderUser is an account record inside one tenant of the identity
// provider.
type ProviderUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// ProviderAPI is the slice of the identity provider's administrative
// API this service uses: tenant-scoped account creation, lookup by
// email, and minting a sign-in token for a user+tenant pair without a
// password round-trip.
type ProviderAPI interface {
	CreateUser(ctx context.Context, tenantID, email, password string) (ProviderUser, error)
	GetUserByEmail(ctx context.Context, tenantID, email string) (ProviderUser, error)
	MintCustomToken(ctx context.Context, tenantID, uid string) (string, error)
}

// ProviderClient talks to the external identity provider over HTTP.
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewProviderClient(cfg ProviderConfig, logger *slog.Logger) *ProviderClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ProviderClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var (
	ErrIdentityNotFound = internal.NewUnauthorizedError("Invalid email or password", internal.ErrCodeInvalidCredentials)
	ErrIdentityExists   = internal.NewConflictError("An account with this email already exists", internal.ErrCodeIdentityExists)
)

func (c *ProviderClient) CreateUser(ctx context.Context, tenantID, email, password string) (ProviderUser, error) {
	var user ProviderUser
	err := c.post(ctx,
		fmt.Sprintf("/v1/tenants/%s/accounts", url.PathEscape(tenantID)),
		map[string]string{"email": email, "password": password},
		&user)
	if err != nil {
		return ProviderUser{}, err
	}
	c.logger.Info("provider account created", "tenant_id", tenantID, "uid", user.UID)
	return user, nil
}

func (c *ProviderClient) GetUserByEmail(ctx context.Context, tenantID, email string) (ProviderUser, error) {
	var user ProviderUser
	err := c.post(ctx,
		fmt.Sprintf("/v1/tenants/%s/accounts:lookup", url.PathEscape(tenantID)),
		map[string]string{"email": email},
		&user)
	if err != nil {
		return ProviderUser{}, err
	}
	return user, nil
}

func (c *ProviderClient) MintCustomToken(ctx context.Context, tenantID, uid string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.post(ctx,
		fmt.Sprintf("/v1/tenants/%s/accounts/%s:mintToken", url.PathEscape(tenantID), url.PathEscape(uid)),
		nil,
		&out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *ProviderClient) post(ctx context.Context, path string, body any, out any) error {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return internal.NewInternalError("encode identity provider request", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &payload)
	if err != nil {
		return internal.NewInternalError("build identity provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("identity provider unreachable", "path", path, "error", err)
		return internal.NewExternalError("identity provider unreachable", internal.ErrCodeIdentityProvider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrIdentityNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrIdentityExists
	case resp.StatusCode >= 400:
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		c.logger.Error("identity provider request failed",
			"path", path,
			"status", resp.StatusCode,
			"error", errBody.Error)
		return internal.NewExternalError("identity provider request failed", internal.ErrCodeIdentityProvider, fmt.Errorf("status %d: %s", resp.StatusCode, errBody.Error))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return internal.NewExternalError("decode identity provider response", internal.ErrCodeIdentityProvider, err)
		}
	}
	return nil
}
