package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/wedflix/command-center/internal/transport"
	"github.com/wedflix/command-center/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     svc,
	}
}

// ListUsers returns every profile, newest first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to list users", "error", err)
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"users": profiles})
}

type updateRolesDTO struct {
	Roles []string `json:"roles"`
}

// UpdateRoles replaces one user's role set.
func (h *Handler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto updateRolesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateRoles(r.Context(), id, dto.Roles); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "roles": dto.Roles})
}

// StreamUsers pushes the live profile list as server-sent events.
func (h *Handler) StreamUsers(w http.ResponseWriter, r *http.Request) {
	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Service.WatchAll(r.Context(),
		func(profiles []Profile) {
			sse.Send("users", map[string]any{"users": profiles})
		},
		func(err error) {
			sse.SendError(err)
		})
	if err != nil {
		h.Logger.Error("failed to open users stream", "error", err)
		sse.SendError(err)
		return
	}
	defer unsubscribe()

	<-r.Context().Done()
}
