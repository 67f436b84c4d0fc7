package main

import (
	"context"
	"log"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/database"
	"github.com/alexivanou/communes-api/internal/repository"
	"github.com/alexivanou/communes-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// An in-memory database starts without a schema
	if cfg.DB.IsMemory() {
		if err := database.MigrateUp(db, cfg.DB, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	parser := seeder.NewParser(cfg.Seeder)

	total, err := seeder.Seed(ctx, parser, repos.City, logger)
	if err != nil {
		logger.Fatal("Failed to import cities", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("cities", total),
		zap.Int("min_population", cfg.Seeder.MinPopulation),
	)
}
