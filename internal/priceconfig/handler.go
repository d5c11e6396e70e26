package priceconfig

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/transport"
)

// UpsertDTO carries the writable fields of a configuration.
type UpsertDTO struct {
	RegularPrice float64 `json:"regularPrice"`
	PremiumPrice float64 `json:"premiumPrice"`
}

// Handler exposes pricing configuration management over HTTP.
type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

// List godoc
// @Summary List price configurations
// @Description Returns one cursor-paginated window, newest first. Pass after or before with a config ID to move between pages.
// @Tags price-configurations
// @Produce json
// @Param pageSize query int false "Page size"
// @Param after query string false "Cursor: return the window after this config"
// @Param before query string false "Cursor: return the window before this config"
// @Success 200 {object} Page
// @Security BearerAuth
// @Router /price-configurations [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 0
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageSize = n
		}
	}

	var (
		page Page
		err  error
	)
	switch {
	case r.URL.Query().Get("after") != "":
		page, err = h.Service.NextPage(r.Context(), pageSize, r.URL.Query().Get("after"))
	case r.URL.Query().Get("before") != "":
		page, err = h.Service.PrevPage(r.Context(), pageSize, r.URL.Query().Get("before"))
	default:
		page, err = h.Service.FirstPage(r.Context(), pageSize)
	}
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Get a price configuration
// @Tags price-configurations
// @Produce json
// @Param id path string true "Config ID"
// @Success 200 {object} PriceConfig
// @Security BearerAuth
// @Router /price-configurations/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cfg)
}

// Create godoc
// @Summary Create a price configuration
// @Tags price-configurations
// @Accept json
// @Produce json
// @Param request body UpsertDTO true "Configuration"
// @Success 201 {object} PriceConfig
// @Security BearerAuth
// @Router /price-configurations [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrUnauthorizedAccess)
		return
	}

	created, err := h.Service.Create(r.Context(), PriceConfig{
		RegularPrice: body.RegularPrice,
		PremiumPrice: body.PremiumPrice,
	}, *actor)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

// Update godoc
// @Summary Update a price configuration
// @Tags price-configurations
// @Accept json
// @Produce json
// @Param id path string true "Config ID"
// @Param request body UpsertDTO true "New prices"
// @Success 200 {object} PriceConfig
// @Security BearerAuth
// @Router /price-configurations/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var body UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), body.RegularPrice, body.PremiumPrice)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete a price configuration
// @Tags price-configurations
// @Param id path string true "Config ID"
// @Success 204
// @Security BearerAuth
// @Router /price-configurations/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
