package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/communes-api/internal/api"
	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/database"
	"github.com/alexivanou/communes-api/internal/llm"
	"github.com/alexivanou/communes-api/internal/repository"
	"github.com/alexivanou/communes-api/internal/seeder"
	"github.com/alexivanou/communes-api/internal/service"
	"github.com/alexivanou/communes-api/internal/stats"
	"github.com/alexivanou/communes-api/internal/weather"
	"github.com/alexivanou/communes-api/internal/wiki"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	repos := repository.NewRepositories(db, cfg.DB.Type)

	ctx := context.Background()
	if err := database.MigrateUp(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Error("Failed to check if database is empty, skipping auto-seed", zap.Error(err))
	} else if isEmpty {
		logger.Info("Database is empty, auto-seeding data...")
		if _, err := seeder.Seed(ctx, seeder.NewParser(cfg.Seeder), repos.City, logger); err != nil {
			logger.Fatal("Failed to auto-seed database", zap.Error(err))
		}
		logger.Info("Database seeded successfully")
	}

	warnMissingSettings(cfg, logger)

	svc := service.NewService(
		repos,
		llm.NewClient(cfg.LLM, logger),
		wiki.NewClient(cfg.Wiki, logger),
		weather.NewClient(cfg.Weather, logger),
		logger,
	)
	svc.SetGenerationTimeout(cfg.LLM.GenerationTimeout)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector, cfg, logger)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Leaves room to write the 502 once a generation times out
		WriteTimeout: svc.GenerationTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func warnMissingSettings(cfg *config.Config, logger *zap.Logger) {
	missing := map[string]string{
		"OPENAI_API_KEY":  cfg.LLM.APIKey,
		"WEATHER_API_KEY": cfg.Weather.APIKey,
	}
	for name, value := range missing {
		if value == "" {
			logger.Warn(fmt.Sprintf("%s is not set, dependent endpoints will fail", name))
		}
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("AUTH_JWT_SECRET is not set, bearer tokens are accepted without verification")
	}
}
