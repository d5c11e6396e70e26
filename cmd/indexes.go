package cmd

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/wedflix/command-center/internal/docstore"
	"github.com/wedflix/command-center/pkg/logger"
)

var indexCmd = &cobra.Command{
	RunE:  runEnsureIndexes,
	Use:   "indexes",
	Short: "Create the document store indexes the queries depend on",
}

func runEnsureIndexes(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(".")
	if err != nil {
		log.Fatal(err)
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

	if err := store.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	lg.Info("indexes ensured")
	return nil
}
