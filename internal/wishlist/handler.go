package wishlist

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/wedflix/command-center/internal/core/pagination"
	"github.com/wedflix/command-center/internal/transport"
)

const defaultPageSize = 10

// PageDTO wraps one page of grouped demand with the distinct-product
// total.
type PageDTO struct {
	Items      []GroupedItem `json:"items"`
	TotalCount int           `json:"totalCount"`
	PageNumber int           `json:"pageNumber"`
	PageSize   int           `json:"pageSize"`
}

// Handler exposes the grouped wishlist over HTTP.
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

// List godoc
// @Summary List grouped wishlist demand
// @Description Returns one page of products ranked by how many distinct users want them
// @Tags wishlist
// @Produce json
// @Param app query string false "Filter by app name (case-insensitive)"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {object} PageDTO
// @Security BearerAuth
// @Router /wishlist [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cfg := pageConfigFromQuery(r)
	appName := r.URL.Query().Get("app")

	items, totalCount, err := h.Service.Page(r.Context(), appName, cfg)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PageDTO{
		Items:      items,
		TotalCount: totalCount,
		PageNumber: cfg.PageNumber,
		PageSize:   cfg.PageSize,
	})
}

// Stream godoc
// @Summary Stream grouped wishlist demand
// @Description Pushes the selected page as server-sent events whenever entries change
// @Tags wishlist
// @Produce text/event-stream
// @Param app query string false "Filter by app name (case-insensitive)"
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Security BearerAuth
// @Router /wishlist/stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	cfg := pageConfigFromQuery(r)
	appName := r.URL.Query().Get("app")

	sse, err := transport.NewSSEWriter(w, h.Logger)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	unsubscribe, err := h.Service.Subscribe(r.Context(), appName, cfg,
		func(items []GroupedItem, totalCount int) {
			sse.Send("wishlist", PageDTO{
				Items:      items,
				TotalCount: totalCount,
				PageNumber: cfg.PageNumber,
				PageSize:   cfg.PageSize,
			})
		},
		func(err error) {
			h.Logger.Error("wishlist stream failed", "error", err)
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

// Users godoc
// @Summary List users wishing for a product
// @Tags wishlist
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {array} User
// @Security BearerAuth
// @Router /wishlist/{productId}/users [get]
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.UsersForProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}
