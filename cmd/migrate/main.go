package main

// Apply database migrations:
//   DATABASE_URL=postgres://... go run ./cmd/migrate

import (
	"context"
	"os"

	"analyst-backend/internal/shared/config"
	"analyst-backend/internal/shared/storage/db"
	"analyst-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.MustLoad()
	telemetry.Init(cfg.LogLevel)
	defer telemetry.Sync()
	ctx := context.Background()

	opts, err := db.OptionsFromEnv(db.DefaultMigrateOptions())
	if err != nil {
		telemetry.Error("migrate.options_invalid", map[string]any{"err": err})
		os.Exit(1)
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		os.Exit(1)
	}
}
