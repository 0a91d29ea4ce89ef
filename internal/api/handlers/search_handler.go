package handlers

import (
	"strings"

	"agrihire/internal/dto"
	"agrihire/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
	logger        *zap.Logger
}

func NewSearchHandler(searchService *service.SearchService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search handles POST /api/v1/search: embeds the query text and returns
// knowledge entries ranked by similarity.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query is required",
		})
	}

	resp, err := h.searchService.Search(c.Context(), &req)
	if err != nil {
		h.logger.Error("Search failed", zap.String("query", req.Query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	return c.JSON(resp)
}
