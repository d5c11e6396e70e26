package access

import (
	"log/slog"
	"net/http"

	internal "github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/transport"
)

// NavigationDTO is the resolver verdict for one navigation attempt,
// plus the caller's full area map so clients can build their menus.
type NavigationDTO struct {
	Decision     Decision        `json:"decision"`
	AllowedAreas []Area          `json:"allowedAreas"`
	AreaDefaults map[Area]string `json:"areaDefaults"`
}

// Handler exposes navigation resolution over HTTP.
type Handler struct {
	*transport.BaseHandler
	Resolver *Resolver
}

func NewHandler(resolver *Resolver, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Resolver:    resolver,
	}
}

// Resolve godoc
// @Summary Resolve a navigation attempt
// @Description Decides whether the caller's roles permit the route, or where to redirect instead
// @Tags navigation
// @Produce json
// @Param route query string true "Route being navigated to"
// @Param area query string false "Area the route belongs to; derived from the route when omitted"
// @Success 200 {object} NavigationDTO
// @Security BearerAuth
// @Router /navigation/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("route")
	if route == "" {
		h.WriteError(w, http.StatusBadRequest, "route is required")
		return
	}

	var roles []Role
	if user, ok := internal.UserFromContext(r.Context()); ok {
		roles = RolesFromStrings(user.Roles)
	}

	var decision Decision
	if area := r.URL.Query().Get("area"); area != "" {
		decision = h.Resolver.Resolve(roles, Area(area), route)
	} else {
		decision = h.Resolver.ResolveRoute(roles, route)
	}

	allowed := AllowedAreas(roles)
	defaults := make(map[Area]string, len(allowed))
	for _, area := range allowed {
		defaults[area] = DefaultRoute(area)
	}

	h.WriteJSON(w, http.StatusOK, NavigationDTO{
		Decision:     decision,
		AllowedAreas: allowed,
		AreaDefaults: defaults,
	})
}
