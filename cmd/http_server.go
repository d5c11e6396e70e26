package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/wedflix/command-center/internal"
	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/auth"
	"github.com/wedflix/command-center/internal/booking"
	"github.com/wedflix/command-center/internal/cache"
	"github.com/wedflix/command-center/internal/company"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/priceconfig"
	"github.com/wedflix/command-center/internal/product"
	"github.com/wedflix/command-center/internal/transport/rest"
	"github.com/wedflix/command-center/internal/user"
	"github.com/wedflix/command-center/internal/wishlist"
	"github.com/wedflix/command-center/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Store    *docstore.MongoStore
	Redis    *redis.Client
	Router   *chi.Mux
	Handlers rest.Handlers
	Authz    *access.Authorization
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
		// WriteTimeout stays zero so event streams can outlive it
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Store.Close(ctx); err != nil {
			deps.Logger.Error("Store close error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("Redis close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	health := map[string]rest.Pinger{
		"docstore": deps.Store,
	}
	if deps.Redis != nil {
		health["redis"] = pingAdapter{deps.Redis}
	}

	rest.RegisterAllRoutes(deps.Router, deps.Handlers, deps.Authz, health,
		deps.Config.Server.AllowedOrigins, deps.Logger)
}

type pingAdapter struct {
	rdb *redis.Client
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	ctx, cancel := context.WithTimeout(context.Background(), config.Database.ConnectTimeout)
	defer cancel()

	store, err := docstore.NewMongoStore(ctx, config.Database.URI, config.Database.Name, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	// Count caching is optional; without an address counts hit the store
	var rdb *redis.Client
	if config.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: config.Redis.Addr})
	}
	counts := cache.New(rdb, config.Redis.CountTTL, lg)

	userService := user.NewService(store, config.Identity.TenantID, lg)

	provider := auth.NewProviderClient(auth.ProviderConfig{
		BaseURL: config.Identity.BaseURL,
		APIKey:  config.Identity.APIKey,
		Timeout: config.Identity.Timeout,
	}, lg)
	tokens := auth.NewJWTTokenGenerator(config.Security.SessionSecret, config.Security.AccessTokenDuration)
	authService := auth.NewService(provider, userService, tokens, lg)
	sessions := auth.NewSessionStore(userService, lg)

	resolver := access.NewResolver(lg)
	productService := product.NewService(store, lg)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(authService, sessions),
		Access:      access.NewHandler(resolver, lg),
		User:        user.NewHandler(userService),
		Booking:     booking.NewHandler(booking.NewService(store, counts, lg), lg),
		Wishlist:    wishlist.NewHandler(wishlist.NewService(store, productService, counts, lg), lg),
		PriceConfig: priceconfig.NewHandler(priceconfig.NewService(store, lg), lg),
		Company:     company.NewHandler(company.NewService(store, lg), lg),
		Product:     product.NewHandler(productService, lg),
	}

	return &Dependencies{
		Config:   config,
		Store:    store,
		Redis:    rdb,
		Router:   chi.NewRouter(),
		Handlers: handlers,
		Authz:    access.NewAuthorization(resolver, lg),
		Logger:   lg,
	}, nil
}
