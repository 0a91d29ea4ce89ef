package handlers

import (
	"time"

	"agrihire/internal/dto"
	"agrihire/internal/models"
	"agrihire/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *zap.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// SyncSourceType handles POST /api/v1/sync/:type. An optional `since`
// query parameter (RFC 3339) restricts the run to rows modified at or
// after that instant; without it the full table is resynced.
func (h *SyncHandler) SyncSourceType(c *fiber.Ctx) error {
	sourceType, ok := models.ParseSourceType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid source type",
		})
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid since timestamp, expected RFC 3339",
			})
		}
		since = &parsed
	}

	var (
		result *dto.SyncResult
		err    error
	)
	switch sourceType {
	case models.SourceTypeEquipment:
		result, err = h.syncService.SyncEquipment(c.Context(), since)
	case models.SourceTypeUser:
		result, err = h.syncService.SyncUsers(c.Context(), since)
	case models.SourceTypeLabour:
		result, err = h.syncService.SyncLabour(c.Context(), since)
	case models.SourceTypeReview:
		result, err = h.syncService.SyncReviews(c.Context(), since)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Source type has no sync path",
		})
	}
	if err != nil {
		h.logger.Error("Sync failed", zap.String("source_type", string(sourceType)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Sync failed",
		})
	}

	return c.JSON(result)
}

// SyncAll handles POST /api/v1/sync: every source type synced
// concurrently, one result per type. Accepts the same optional `since`
// query parameter as the per-type trigger.
func (h *SyncHandler) SyncAll(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid since timestamp, expected RFC 3339",
			})
		}
		since = &parsed
	}

	return c.JSON(h.syncService.SyncAll(c.Context(), since))
}

// DeleteEntry handles DELETE /api/v1/knowledge/:type/:id, removing the
// entry for a deleted source record. An absent key is not an error.
func (h *SyncHandler) DeleteEntry(c *fiber.Ctx) error {
	sourceType, ok := models.ParseSourceType(c.Params("type"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid source type",
		})
	}

	sourceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid source ID",
		})
	}

	if err := h.syncService.Delete(c.Context(), sourceType, sourceID); err != nil {
		h.logger.Error("Delete failed",
			zap.String("source_type", string(sourceType)),
			zap.String("source_id", sourceID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Delete failed",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
