package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"agrihire/internal/dto"
	"agrihire/internal/models"
	"agrihire/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder is the slice of EmbeddingService the orchestrator needs.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) models.EmbeddingResult
}

// KnowledgeStore is the write side of the vector store gateway.
type KnowledgeStore interface {
	Upsert(ctx context.Context, entry *models.KnowledgeEntry) error
	DeleteByKey(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error
}

type EquipmentSource interface {
	List(ctx context.Context, since *time.Time) ([]*models.Equipment, error)
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

type UserSource interface {
	List(ctx context.Context, since *time.Time) ([]*models.User, error)
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

type LabourSource interface {
	List(ctx context.Context, since *time.Time) ([]*models.LabourProfile, error)
}

type ReviewSource interface {
	List(ctx context.Context, since *time.Time) ([]*models.Review, error)
}

// SyncService brings the vector store's view of each source type up to
// date with the relational source of truth. Every selected row is
// re-formatted, re-embedded and re-upserted unconditionally; a failed row
// is recorded and skipped, never aborting the run.
type SyncService struct {
	equipmentRepo EquipmentSource
	userRepo      UserSource
	labourRepo    LabourSource
	reviewRepo    ReviewSource
	knowledgeRepo KnowledgeStore
	embedder      Embedder
	config        *config.SyncConfig
	logger        *zap.Logger
}

func NewSyncService(
	equipmentRepo EquipmentSource,
	userRepo UserSource,
	labourRepo LabourSource,
	reviewRepo ReviewSource,
	knowledgeRepo KnowledgeStore,
	embedder Embedder,
	cfg *config.SyncConfig,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		equipmentRepo: equipmentRepo,
		userRepo:      userRepo,
		labourRepo:    labourRepo,
		reviewRepo:    reviewRepo,
		knowledgeRepo: knowledgeRepo,
		embedder:      embedder,
		config:        cfg,
		logger:        logger,
	}
}

// syncRow runs format -> embed -> upsert for one row. The outcome lands in
// the result as either a synced count increment or one error message keyed
// by the row's identity.
func (s *SyncService) syncRow(ctx context.Context, result *dto.SyncResult, sourceType models.SourceType, sourceID uuid.UUID, content string, metadata any) {
	rowKey := fmt.Sprintf("%s %s", sourceType, sourceID)

	content = sanitizeUTF8(content)
	embedRes := s.embedder.EmbedOne(ctx, content)
	if !embedRes.Success {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: embedding failed: %s", rowKey, embedRes.Error))
		return
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to encode metadata: %v", rowKey, err))
		return
	}

	entry := &models.KnowledgeEntry{
		SourceType: sourceType,
		SourceID:   sourceID,
		Content:    content,
		Embedding:  embedRes.Embedding,
		Metadata:   string(metaJSON),
	}
	if err := s.knowledgeRepo.Upsert(ctx, entry); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: upsert failed: %v", rowKey, err))
		return
	}

	result.Synced++
}

func (s *SyncService) batchSize() int {
	if s.config.BatchSize > 0 {
		return s.config.BatchSize
	}
	return 50
}

// SyncEquipment syncs equipment listings, restricted to rows modified at
// or after since when it is non-nil.
func (s *SyncService) SyncEquipment(ctx context.Context, since *time.Time) (*dto.SyncResult, error) {
	rows, err := s.equipmentRepo.List(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	result := dto.NewSyncResult(string(models.SourceTypeEquipment))
	for start := 0; start < len(rows); start += s.batchSize() {
		end := min(start+s.batchSize(), len(rows))
		for _, eq := range rows[start:end] {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.syncRow(ctx, result, models.SourceTypeEquipment, eq.ID, FormatEquipment(eq), map[string]any{
				"name":       eq.Name,
				"category":   eq.Category,
				"location":   eq.Location,
				"daily_rate": eq.DailyRate,
				"available":  eq.Available,
			})
		}
	}

	s.logResult(result)
	return result, nil
}

func (s *SyncService) SyncUsers(ctx context.Context, since *time.Time) (*dto.SyncResult, error) {
	rows, err := s.userRepo.List(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := dto.NewSyncResult(string(models.SourceTypeUser))
	for start := 0; start < len(rows); start += s.batchSize() {
		end := min(start+s.batchSize(), len(rows))
		for _, user := range rows[start:end] {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.syncRow(ctx, result, models.SourceTypeUser, user.ID, FormatUser(user), map[string]any{
				"name":   user.Name,
				"region": user.Region,
				"role":   user.Role,
			})
		}
	}

	s.logResult(result)
	return result, nil
}

func (s *SyncService) SyncLabour(ctx context.Context, since *time.Time) (*dto.SyncResult, error) {
	rows, err := s.labourRepo.List(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list labour profiles: %w", err)
	}

	result := dto.NewSyncResult(string(models.SourceTypeLabour))
	for start := 0; start < len(rows); start += s.batchSize() {
		end := min(start+s.batchSize(), len(rows))
		for _, lp := range rows[start:end] {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.syncRow(ctx, result, models.SourceTypeLabour, lp.ID, FormatLabour(lp), map[string]any{
				"headline":    lp.Headline,
				"region":      lp.Region,
				"skills":      lp.Skills,
				"hourly_rate": lp.HourlyRate,
			})
		}
	}

	s.logResult(result)
	return result, nil
}

// SyncReviews resolves the equipment and reviewer names each review needs
// with best-effort lookups: a missing name degrades the formatted content,
// it never fails the row.
func (s *SyncService) SyncReviews(ctx context.Context, since *time.Time) (*dto.SyncResult, error) {
	rows, err := s.reviewRepo.List(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := dto.NewSyncResult(string(models.SourceTypeReview))
	for start := 0; start < len(rows); start += s.batchSize() {
		end := min(start+s.batchSize(), len(rows))
		for _, rev := range rows[start:end] {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			equipmentName, err := s.equipmentRepo.GetName(ctx, rev.EquipmentID)
			if err != nil {
				s.logger.Warn("Equipment name lookup failed", zap.String("review_id", rev.ID.String()), zap.Error(err))
				equipmentName = ""
			}
			reviewerName, err := s.userRepo.GetName(ctx, rev.ReviewerID)
			if err != nil {
				s.logger.Warn("Reviewer name lookup failed", zap.String("review_id", rev.ID.String()), zap.Error(err))
				reviewerName = ""
			}

			s.syncRow(ctx, result, models.SourceTypeReview, rev.ID, FormatReview(rev, equipmentName, reviewerName), map[string]any{
				"equipment_id": rev.EquipmentID,
				"reviewer_id":  rev.ReviewerID,
				"rating":       rev.Rating,
			})
		}
	}

	s.logResult(result)
	return result, nil
}

// SyncAll runs every source type's sync concurrently and returns one
// result per type. A failure in one type never affects another.
func (s *SyncService) SyncAll(ctx context.Context, since *time.Time) map[string]*dto.SyncResult {
	type syncFn struct {
		sourceType models.SourceType
		run        func(context.Context, *time.Time) (*dto.SyncResult, error)
	}

	fns := []syncFn{
		{models.SourceTypeEquipment, s.SyncEquipment},
		{models.SourceTypeUser, s.SyncUsers},
		{models.SourceTypeLabour, s.SyncLabour},
		{models.SourceTypeReview, s.SyncReviews},
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*dto.SyncResult, len(fns))
	)

	for _, fn := range fns {
		wg.Add(1)
		go func(fn syncFn) {
			defer wg.Done()
			result, err := fn.run(ctx, since)
			if err != nil {
				if result == nil {
					result = dto.NewSyncResult(string(fn.sourceType))
				}
				result.Errors = append(result.Errors, err.Error())
			}
			mu.Lock()
			results[string(fn.sourceType)] = result
			mu.Unlock()
		}(fn)
	}
	wg.Wait()

	return results
}

// Delete removes the knowledge entry for a removed source record.
// Deleting an absent key is a no-op.
func (s *SyncService) Delete(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error {
	return s.knowledgeRepo.DeleteByKey(ctx, sourceType, sourceID)
}

func (s *SyncService) logResult(result *dto.SyncResult) {
	s.logger.Info("Sync completed",
		zap.String("source_type", result.SourceType),
		zap.Int("synced", result.Synced),
		zap.Int("errors", len(result.Errors)),
	)
}
