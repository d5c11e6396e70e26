package booking

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/core/pagination"
	"github.com/wedflix/command-center/internal/transport"
)

const defaultPageSize = 10

// Handler exposes the booking review queue over HTTP.
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

func pageConfigFromQuery(r *http.Request) pagination.PageConfig {
	cfg := pagination.PageConfig{PageSize: defaultPageSize, PageNumber: 1}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageNumber = n
		}
	}
	return cfg
}

// ListPending godoc
// @Summary List pending bookings
// @Description Returns one page of the pending review queue, newest first
// @Tags bookings
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} PendingPageDTO
// @Security BearerAuth
// @Router /bookings/pending [get]
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	cfg := pageConfigFromQuery(r)

	bookings, totalCount, err := h.Service.PendingPage(r.Context(), cfg)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PendingPageDTO{
		Bookings:   toDTOs(bookings),
		TotalCount: totalCount,
		PageNumber: cfg.PageNumber,
		PageSize:   cfg.PageSize,
	})
}

// StreamPending godoc
// @Summary Stream pending bookings
// @Description Pushes the selected page as server-sent events whenever the queue changes
// @Tags bookings
// @Produce text/event-stream
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Security BearerAuth
// @Router /bookings/pending/stream [get]
func (h *Handler) StreamPending(w http.ResponseWriter, r *http.Request) {
	cfg := pageConfigFromQuery(r)

	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Service.SubscribePending(r.Context(), cfg,
		func(bookings []Booking, totalCount int) {
			sse.Send("bookings", PendingPageDTO{
				Bookings:   toDTOs(bookings),
				TotalCount: totalCount,
				PageNumber: cfg.PageNumber,
				PageSize:   cfg.PageSize,
			})
		},
		func(err error) {
			h.Logger.Error("pending booking stream failed", "error", err)
			sse.SendError(err)
		},
	)
	if err != nil {
		sse.SendError(err)
		return
	}
	defer unsubscribe()

	<-r.Context().Done()
}

func (h *Handler) requireConfirmation(w http.ResponseWriter, r *http.Request) bool {
	var body ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Confirm {
		h.WriteAppError(w, internal.ErrConfirmRequired)
		return false
	}
	return true
}

// Approve godoc
// @Summary Approve a booking
// @Description Marks the booking approved and takes it out of screening; requires explicit confirmation
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking document ID"
// @Param request body ConfirmDTO true "Confirmation"
// @Success 200 {object} BookingDTO
// @Security BearerAuth
// @Router /bookings/{id}/approve [patch]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfirmation(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Approve(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	updated, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toDTO(updated))
}

// Reject godoc
// @Summary Reject a booking
// @Description Marks the booking rejected; requires explicit confirmation
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking document ID"
// @Param request body ConfirmDTO true "Confirmation"
// @Success 200 {object} BookingDTO
// @Security BearerAuth
// @Router /bookings/{id}/reject [patch]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfirmation(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Service.Reject(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	updated, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toDTO(updated))
}
