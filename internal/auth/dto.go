package auth

// CredentialsDTO is the transport shape of the sign-in and sign-up
// endpoints: email+password scoped to an identity-provider tenant.
type CredentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d CredentialsDTO) Validate() error {
	if d.Email == "" || d.Password == "" || d.TenantID == "" {
		return ValidationError{Msg: "Email, password, and tenantId are required"}
	}
	return nil
}

// Session is the successful response of both identity endpoints: the
// provider-minted token plus an API access token for subsequent calls.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	TenantID    string `json:"tenantId"`
	CustomToken string `json:"customToken"`
	AccessToken string `json:"accessToken,omitempty"`
}
