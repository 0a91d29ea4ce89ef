package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agrihire/internal/api"
	"agrihire/internal/api/handlers"
	"agrihire/internal/repository"
	"agrihire/internal/service"
	"agrihire/pkg/config"
	"agrihire/pkg/logger"
	"agrihire/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting AgriHire knowledge service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	equipmentRepo := repository.NewEquipmentRepository(db, appLogger)
	userRepo := repository.NewUserRepository(db, appLogger)
	labourRepo := repository.NewLabourRepository(db, appLogger)
	reviewRepo := repository.NewReviewRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, cfg.Embedding.Dimension, appLogger)

	// Initialize services
	embeddingService := service.NewEmbeddingService(&cfg.Embedding, nil, appLogger)
	syncService := service.NewSyncService(
		equipmentRepo, userRepo, labourRepo, reviewRepo,
		knowledgeRepo, embeddingService, &cfg.Sync, appLogger,
	)
	searchService := service.NewSearchService(knowledgeRepo, embeddingService, &cfg.Search, appLogger)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService, appLogger)
	syncHandler := handlers.NewSyncHandler(syncService, appLogger)

	// Setup router
	app := api.SetupRouter(searchHandler, syncHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
