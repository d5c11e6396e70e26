package product

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/wedflix/command-center/internal/transport"
)

// Handler exposes the product catalog over HTTP.
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
// @Summary List products
// @Description Returns the non-deleted catalog, newest first
// @Tags products
// @Produce json
// @Success 200 {array} Product
// @Security BearerAuth
// @Router /products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, products)
}

// Get godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} Product
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Stream godoc
// @Summary Stream the product catalog
// @Description Pushes the full catalog as server-sent events on every change
// @Tags products
// @Produce text/event-stream
// @Security BearerAuth
// @Router /products/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Service.Watch(r.Context(),
		func(products []Product) { sse.Send("products", products) },
		func(err error) {
			h.Logger.Error("product stream failed", "error", err)
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
