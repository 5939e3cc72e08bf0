package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"newsreview/internal/config"
	"newsreview/internal/db"
	"newsreview/internal/email"
	"newsreview/internal/logging"
	"newsreview/internal/metrics"
	"newsreview/internal/review"
	"newsreview/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFile, cfg.IsDev())
	defer func() { _ = logger.Sync() }()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("migrations completed")

	if cfg.SeedDevData {
		if err := database.SeedDevData(ctx); err != nil {
			logger.Warn("failed to seed development data", zap.Error(err))
		}
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		logger.Warn("failed to load config.yaml", zap.Error(err))
	}

	// Promotion: stepwise remote writes or one transaction, always logged
	var promoter review.Promoter = review.NewWorkflow(database, database, logger)
	if cfg.IsAtomicPromotion() {
		promoter = database
	}
	promoter = review.WithAttemptLog(promoter, database, logger)
	logger.Info("promotion mode", zap.String("mode", cfg.PromotionMode))

	notifier := email.NewNotifier(cfg, database, logger)

	sessions := review.NewRegistry(cfg.ReviewSessionTTL, func() *review.Session {
		return review.NewSession(database, database, promoter, logger).WithListeners(notifier)
	})

	metrics.Init(database, sessions, logger)

	srv := server.New(cfg, logger, server.Options{})
	srv.RegisterRoutes(sessions, database, yamlCfg)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
