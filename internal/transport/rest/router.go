package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/httprate"

	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/auth"
	"github.com/wedflix/command-center/internal/booking"
	"github.com/wedflix/command-center/internal/company"
	"github.com/wedflix/command-center/internal/priceconfig"
	"github.com/wedflix/command-center/internal/product"
	"github.com/wedflix/command-center/internal/transport/middleware"
	"github.com/wedflix/command-center/internal/transport/swagger"
	"github.com/wedflix/command-center/internal/user"
	"github.com/wedflix/command-center/internal/wishlist"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	Access      *access.Handler
	User        *user.Handler
	Booking     *booking.Handler
	Wishlist    *wishlist.Handler
	PriceConfig *priceconfig.Handler
	Company     *company.Handler
	Product     *product.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, authz *access.Authorization, health map[string]Pinger, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(health)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Identity endpoints, rate limited per client IP
		r.Route("/auth", func(sr chi.Router) {
			sr.Use(httprate.LimitByIP(10, time.Minute))
			sr.Post("/signin", h.Auth.SignIn)
			sr.Post("/signup", h.Auth.SignUp)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/session/stream", h.Auth.StreamSession)
			pr.Get("/navigation/resolve", h.Access.Resolve)

			// Review queue, shared by admins and SAM reviewers
			pr.Route("/bookings", func(br chi.Router) {
				br.Use(authz.RequireAnyRole(access.RoleCommandCenter, access.RoleSAMUser))
				br.Get("/pending", h.Booking.ListPending)
				br.Get("/pending/stream", h.Booking.StreamPending)
				br.Patch("/{id}/approve", h.Booking.Approve)
				br.Patch("/{id}/reject", h.Booking.Reject)
			})

			pr.Route("/wishlist", func(wr chi.Router) {
				wr.Use(authz.RequireAnyRole(access.RoleCommandCenter, access.RoleSAMUser))
				wr.Get("/", h.Wishlist.List)
				wr.Get("/stream", h.Wishlist.Stream)
				wr.Get("/{productId}/users", h.Wishlist.Users)
			})

			// Admin area
			pr.Route("/companies", func(cr chi.Router) {
				cr.Use(authz.RequireArea(access.AreaAdmin))
				cr.Get("/", h.Company.List)
				cr.Get("/stream", h.Company.Stream)
				cr.Get("/{id}", h.Company.Get)
			})

			pr.Route("/products", func(pdr chi.Router) {
				pdr.Use(authz.RequireArea(access.AreaAdmin))
				pdr.Get("/", h.Product.List)
				pdr.Get("/stream", h.Product.Stream)
				pdr.Get("/{id}", h.Product.Get)
			})

			pr.Route("/price-configurations", func(pcr chi.Router) {
				pcr.Use(authz.RequireAnyRole(access.RoleCommandCenter))
				pcr.Get("/", h.PriceConfig.List)
				pcr.Post("/", h.PriceConfig.Create)
				pcr.Get("/{id}", h.PriceConfig.Get)
				pcr.Put("/{id}", h.PriceConfig.Update)
				pcr.Delete("/{id}", h.PriceConfig.Delete)
			})

			// IT area
			pr.Route("/users", func(ur chi.Router) {
				ur.Use(authz.RequireArea(access.AreaIT))
				ur.Get("/", h.User.ListUsers)
				ur.Get("/stream", h.User.StreamUsers)
				ur.Patch("/{id}/roles", h.User.UpdateRoles)
			})
		})
	})
}
