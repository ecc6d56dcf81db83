package main

import (
	"context"
	"log"

	"exam-hub/internal/config"
	"exam-hub/internal/database"
	"exam-hub/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.DB.Driver != config.DriverOracle {
		log.Fatalf("Migrations only apply to the %q driver, got %q", config.DriverOracle, cfg.DB.Driver)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewSQLXOracleDB(ctx, cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.DB); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}
