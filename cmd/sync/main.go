// Command sync runs a knowledge sync from the command line, intended for
// cron or a job runner. With -type it syncs one source type; without it,
// everything. With -since it runs incrementally over rows modified within
// the given window.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrihire/internal/dto"
	"agrihire/internal/models"
	"agrihire/internal/repository"
	"agrihire/internal/service"
	"agrihire/pkg/config"
	"agrihire/pkg/logger"
	"agrihire/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	var (
		sourceTypeFlag = flag.String("type", "", "source type to sync (equipment, user, labour, review); empty syncs everything")
		sinceFlag      = flag.Duration("since", 0, "incremental window, e.g. 1h30m; 0 means full resync")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Cancel in-flight work on SIGINT/SIGTERM; per-row upserts are
	// idempotent, so a cancelled run just leaves rows for the next one
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	equipmentRepo := repository.NewEquipmentRepository(db, appLogger)
	userRepo := repository.NewUserRepository(db, appLogger)
	labourRepo := repository.NewLabourRepository(db, appLogger)
	reviewRepo := repository.NewReviewRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, cfg.Embedding.Dimension, appLogger)

	embeddingService := service.NewEmbeddingService(&cfg.Embedding, nil, appLogger)
	syncService := service.NewSyncService(
		equipmentRepo, userRepo, labourRepo, reviewRepo,
		knowledgeRepo, embeddingService, &cfg.Sync, appLogger,
	)

	var since *time.Time
	if *sinceFlag > 0 {
		t := time.Now().Add(-*sinceFlag).UTC()
		since = &t
	}

	results := runSync(ctx, syncService, *sourceTypeFlag, since, appLogger)

	var synced, failed int
	for _, result := range results {
		fmt.Printf("%s: synced %d, %d errors\n", result.SourceType, result.Synced, len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  %s\n", msg)
		}
		synced += result.Synced
		failed += len(result.Errors)
	}

	if synced == 0 && failed > 0 {
		os.Exit(1)
	}
}

func runSync(ctx context.Context, syncService *service.SyncService, sourceType string, since *time.Time, appLogger *zap.Logger) []*dto.SyncResult {
	if sourceType == "" {
		all := syncService.SyncAll(ctx, since)
		results := make([]*dto.SyncResult, 0, len(all))
		for _, st := range []models.SourceType{
			models.SourceTypeEquipment, models.SourceTypeUser,
			models.SourceTypeLabour, models.SourceTypeReview,
		} {
			if result, ok := all[string(st)]; ok {
				results = append(results, result)
			}
		}
		return results
	}

	st, ok := models.ParseSourceType(sourceType)
	if !ok {
		appLogger.Fatal("Unknown source type", zap.String("type", sourceType))
	}

	var (
		result *dto.SyncResult
		err    error
	)
	switch st {
	case models.SourceTypeEquipment:
		result, err = syncService.SyncEquipment(ctx, since)
	case models.SourceTypeUser:
		result, err = syncService.SyncUsers(ctx, since)
	case models.SourceTypeLabour:
		result, err = syncService.SyncLabour(ctx, since)
	case models.SourceTypeReview:
		result, err = syncService.SyncReviews(ctx, since)
	default:
		appLogger.Fatal("Source type has no sync path", zap.String("type", sourceType))
	}
	if err != nil {
		appLogger.Fatal("Sync failed", zap.String("type", sourceType), zap.Error(err))
	}

	return []*dto.SyncResult{result}
}
