package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/transport"
	"github.com/wedflix/command-center/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service  *Service
	Sessions *SessionStore
}

func NewHandler(svc *Service, sessions *SessionStore) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Sessions:    sessions,
	}
}

// writeIdentityError writes the `{error: string}` body the identity
// endpoints contract on, distinct from the rest of the API's error
// shape.
func (h *Handler) writeIdentityError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

func (h *Handler) identityStatus(err error) (int, string) {
	if verr, ok := err.(ValidationError); ok {
		return http.StatusBadRequest, verr.Msg
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.StatusCode, appErr.Message
	}
	return http.StatusInternalServerError, "Failed to sign in"
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var dto CredentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeIdentityError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.SignIn(r.Context(), dto)
	if err != nil {
		h.Logger.Error("sign-in failed", "error", err)
		status, msg := h.identityStatus(err)
		h.writeIdentityError(w, status, msg)
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var dto CredentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeIdentityError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.SignUp(r.Context(), dto)
	if err != nil {
		h.Logger.Error("sign-up failed", "error", err)
		status, msg := h.identityStatus(err)
		if status == http.StatusInternalServerError {
			msg = "Failed to create user"
		}
		h.writeIdentityError(w, status, msg)
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

// AuthMiddleware validates the access token and attaches the session
// user, with roles normalized from the profile record, to the request
// context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		profile, err := h.Service.ProfileForUID(r.Context(), claims.UID)
		if err != nil {
			h.Logger.Warn("profile lookup failed for valid token", "uid", claims.UID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		sessionUser := &internal.SessionUser{
			UID:   profile.UID,
			Email: profile.Email,
			Roles: profile.Roles,
		}
		next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), sessionUser)))
	})
}

// StreamSession pushes the caller's role set as server-sent events for
// as long as the connection stays open. Role grants changed by an
// administrator mid-session arrive without polling.
func (h *Handler) StreamSession(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Sessions.Open(r.Context(), sessionUser.UID,
		func(roles []string) {
			sse.Send("roles", map[string]any{"roles": roles})
		},
		func(err error) {
			sse.SendError(err)
		})
	if err != nil {
		h.Logger.Error("failed to open session stream", "uid", sessionUser.UID, "error", err)
		sse.SendError(err)
		return
	}
	defer unsubscribe()

	<-r.Context().Done()
}
