package service

import (
	"context"
	"fmt"

	"agrihire/internal/dto"
	"agrihire/internal/models"
	"agrihire/internal/repository"
	"agrihire/pkg/config"

	"go.uber.org/zap"
)

// KnowledgeSearcher is the read side of the vector store gateway.
type KnowledgeSearcher interface {
	Search(ctx context.Context, queryEmbedding []float32, threshold float64, limit int, sourceTypes []models.SourceType) ([]*repository.SearchResult, error)
}

type SearchService struct {
	knowledgeRepo KnowledgeSearcher
	embedder      Embedder
	config        *config.SearchConfig
	logger        *zap.Logger
}

func NewSearchService(knowledgeRepo KnowledgeSearcher, embedder Embedder, cfg *config.SearchConfig, logger *zap.Logger) *SearchService {
	return &SearchService{
		knowledgeRepo: knowledgeRepo,
		embedder:      embedder,
		config:        cfg,
		logger:        logger,
	}
}

// Search embeds the query text and returns entries ranked by descending
// cosine similarity. Threshold and limit fall back to configured defaults
// when nil.
func (s *SearchService) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	threshold := s.config.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	limit := s.config.DefaultLimit
	if req.Limit != nil && *req.Limit > 0 {
		limit = *req.Limit
	}

	var sourceTypes []models.SourceType
	for _, raw := range req.SourceTypes {
		st, ok := models.ParseSourceType(raw)
		if !ok {
			return nil, fmt.Errorf("unknown source type %q", raw)
		}
		sourceTypes = append(sourceTypes, st)
	}

	embedRes := s.embedder.EmbedOne(ctx, req.Query)
	if !embedRes.Success {
		return nil, fmt.Errorf("failed to embed query: %s", embedRes.Error)
	}

	results, err := s.knowledgeRepo.Search(ctx, embedRes.Embedding, threshold, limit, sourceTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge entries: %w", err)
	}

	resp := &dto.SearchResponse{Query: req.Query, Results: make([]dto.SearchHit, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, dto.SearchHit{
			ID:         res.ID.String(),
			SourceType: string(res.SourceType),
			SourceID:   res.SourceID.String(),
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		})
	}

	s.logger.Info("Knowledge search completed",
		zap.String("query", req.Query),
		zap.Int("results", len(resp.Results)),
	)

	return resp, nil
}
