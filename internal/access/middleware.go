package access

import (
	"log/slog"
	"net/http"

	internal "github.com/wedflix/command-center/internal"
)

// Authorization gates HTTP routes on the role→area permission map. The
// auth middleware must have placed the session user in the request
// context first.
type Authorization struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewAuthorization(resolver *Resolver, logger *slog.Logger) *Authorization {
	return &Authorization{resolver: resolver, logger: logger}
}

// RequireArea permits only identities whose role set grants the area.
func (a *Authorization) RequireArea(area Area) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				a.logger.Warn("area check failed: user not found in context", "area", area)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			roles := RolesFromStrings(user.Roles)
			if !AreaAllowed(roles, area) {
				a.logger.WarnContext(r.Context(), "access denied: area not permitted",
					"uid", user.UID,
					"area", area,
					"roles", user.Roles)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole permits identities holding at least one of the roles.
func (a *Authorization) RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				a.logger.Warn("role check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, required := range roles {
				for _, held := range user.Roles {
					if string(required) == held {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			a.logger.WarnContext(r.Context(), "access denied: role not held",
				"uid", user.UID,
				"required_roles", roles,
				"roles", user.Roles)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
		})
	}
}
