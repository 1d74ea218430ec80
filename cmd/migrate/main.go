package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"nutrisnap-backend/internal/shared/config"
	"nutrisnap-backend/internal/shared/storage/db"
	"nutrisnap-backend/internal/shared/telemetry"
)

func main() {
	telemetry.UseConsole(os.Stderr, false)
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("migrate.config_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", nil)
}
