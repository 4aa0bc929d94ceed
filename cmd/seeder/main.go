// Command seeder installs the starter chart of accounts and the default
// journal into the configured database.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/openbooks-app/openbooks/internal/core/services"
	"github.com/openbooks-app/openbooks/internal/repositories/database/pgsql"
	"github.com/openbooks-app/openbooks/internal/seeding"
	"github.com/openbooks-app/openbooks/pkg/config"
	"github.com/openbooks-app/openbooks/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(&repos)

	if err := seeding.SeedChartOfAccounts(ctx, logger, serviceContainer.Account, serviceContainer.Journal, "seeder"); err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Seeding complete.")
}
