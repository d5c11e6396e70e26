package company

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/wedflix/command-center/internal/transport"
)

// Handler exposes the company directory over HTTP.
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
// @Summary List companies
// @Description Returns the companies, newest first
// @Tags companies
// @Produce json
// @Success 200 {array} Company
// @Security BearerAuth
// @Router /companies [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, companies)
}

// Get godoc
// @Summary Get a company
// @Tags companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} Company
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Stream godoc
// @Summary Stream the company directory
// @Description Pushes the full directory as server-sent events on every change
// @Tags companies
// @Produce text/event-stream
// @Security BearerAuth
// @Router /companies/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Service.Watch(r.Context(),
		func(companies []Company) { sse.Send("companies", companies) },
		func(err error) {
			h.Logger.Error("company stream failed", "error", err)
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
