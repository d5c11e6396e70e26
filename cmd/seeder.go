package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wedflix/command-center/internal/access"
	"github.com/wedflix/command-center/internal/booking"
	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/internal/priceconfig"
	"github.com/wedflix/command-center/internal/user"
	"github.com/wedflix/command-center/internal/wishlist"
	"github.com/wedflix/command-center/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the document store with baseline data",
	Long:  `Seed the default price configuration and, with --demo, sample data for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(os.Getenv("APP_ENV"))
		lg := logger.L()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		defer cancel()

		store, err := docstore.NewMongoStore(ctx, cfg.Database.URI, cfg.Database.Name, lg)
		if err != nil {
			log.Fatalf("failed to connect to document store: %v", err)
		}
		defer store.Close(context.Background())

		seedCtx := context.Background()

		if clearData {
			clearCollections(seedCtx, store)
		}

		prices := priceconfig.NewService(store, lg)
		if err := prices.EnsureDefault(seedCtx); err != nil {
			log.Fatalf("failed to seed default price configuration: %v", err)
		}
		fmt.Println("Ensured default price configuration")

		if seedDemo {
			seedDemoData(seedCtx, store, cfg.Identity.TenantID)
		}
	},
}

func clearCollections(ctx context.Context, store docstore.Store) {
	for _, name := range []string{
		booking.Collection,
		wishlist.Collection,
		priceconfig.Collection,
		user.ProfilesCollection,
	} {
		col := store.Collection(name)
		docs, err := col.Find(ctx, docstore.Query{})
		if err != nil {
			log.Fatalf("failed to list %s: %v", name, err)
		}
		for _, d := range docs {
			if err := col.Delete(ctx, d.ID); err != nil {
				log.Fatalf("failed to clear %s: %v", name, err)
			}
		}
		fmt.Printf("Cleared %s (%d documents)\n", name, len(docs))
	}
}

func seedDemoData(ctx context.Context, store docstore.Store, tenantID string) {
	now := time.Now().UTC()

	profiles := store.Collection(user.ProfilesCollection)
	adminUID := "demo-admin"
	if err := profiles.Set(ctx, adminUID, map[string]any{
		"uid":       adminUID,
		"email":     "admin@command-center.dev",
		"roles":     []string{string(access.RoleCommandCenter)},
		"tenant":    tenantID,
		"createdAt": now,
	}); err != nil {
		log.Fatalf("failed to seed admin profile: %v", err)
	}
	fmt.Println("Seeded admin profile:", adminUID)

	bookings := store.Collection(booking.Collection)
	for i := 0; i < 3; i++ {
		id := uuid.New().String()
		if err := bookings.Set(ctx, id, map[string]any{
			"reservation_id": fmt.Sprintf("demo-booking-%d", i+1),
			"url":            fmt.Sprintf("https://cdn.command-center.dev/demo/%d.jpg", i+1),
			"created":        now.Add(-time.Duration(i) * time.Hour),
			"for_censorship": booking.CensorshipPending,
			"for_screening":  1,
			"total_cost":     float64(100 * (i + 1)),
		}); err != nil {
			log.Fatalf("failed to seed booking: %v", err)
		}
	}
	fmt.Println("Seeded demo bookings")

	entries := store.Collection(wishlist.Collection)
	for i := 0; i < 4; i++ {
		id := uuid.New().String()
		if err := entries.Set(ctx, id, map[string]any{
			"product_id": fmt.Sprintf("demo-product-%d", i%2+1),
			"user_id":    fmt.Sprintf("demo-user-%d", i+1),
			"AppName":    wishlist.AppWedflix,
			"deleted":    false,
			"created":    now,
		}); err != nil {
			log.Fatalf("failed to seed wishlist entry: %v", err)
		}
	}
	fmt.Println("Seeded demo wishlist entries")
}
