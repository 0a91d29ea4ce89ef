package repository

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"agrihire/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchResult is one similarity-search hit. Similarity is raw cosine
// similarity in [-1, 1], computed as 1 - cosine distance.
type SearchResult struct {
	ID         uuid.UUID         `json:"id"`
	SourceType models.SourceType `json:"source_type"`
	SourceID   uuid.UUID         `json:"source_id"`
	Content    string            `json:"content"`
	Metadata   string            `json:"metadata"`
	Similarity float64           `json:"similarity"`
}

type KnowledgeRepository struct {
	db        DB
	dimension int
	logger    *zap.Logger
}

func NewKnowledgeRepository(db DB, dimension int, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:        db,
		dimension: dimension,
		logger:    logger,
	}
}

// Upsert writes an entry keyed by (source_type, source_id). A second call
// with the same key replaces content, metadata and embedding and advances
// updated_at, so repeated sync runs are safe.
func (r *KnowledgeRepository) Upsert(ctx context.Context, entry *models.KnowledgeEntry) error {
	if len(entry.Embedding) != r.dimension {
		return fmt.Errorf("embedding dimension %d does not match configured dimension %d", len(entry.Embedding), r.dimension)
	}

	now := time.Now().UTC()
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query := squirrel.Insert("knowledge_entries").
		Columns("id", "source_type", "source_id", "content", "metadata", "embedding", "created_at", "updated_at").
		Values(id, entry.SourceType, entry.SourceID, entry.Content, entry.Metadata,
			squirrel.Expr("?::vector", vectorLiteral(entry.Embedding)), now, now).
		Suffix(`ON CONFLICT (source_type, source_id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to upsert knowledge entry: %w", err)
	}
	return nil
}

// DeleteByKey removes the entry for (sourceType, sourceID). Deleting an
// absent key is a no-op, not an error.
func (r *KnowledgeRepository) DeleteByKey(ctx context.Context, sourceType models.SourceType, sourceID uuid.UUID) error {
	query := squirrel.Delete("knowledge_entries").
		Where(squirrel.Eq{"source_type": sourceType, "source_id": sourceID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("Delete of absent knowledge entry",
			zap.String("source_type", string(sourceType)),
			zap.String("source_id", sourceID.String()),
		)
	}
	return nil
}

// Search returns entries whose cosine similarity to queryEmbedding is at
// least threshold, ordered by descending similarity and truncated to limit.
// An empty sourceTypes slice means no type filter.
func (r *KnowledgeRepository) Search(ctx context.Context, queryEmbedding []float32, threshold float64, limit int, sourceTypes []models.SourceType) ([]*SearchResult, error) {
	if len(queryEmbedding) != r.dimension {
		return nil, fmt.Errorf("query embedding dimension %d does not match configured dimension %d", len(queryEmbedding), r.dimension)
	}

	lit := vectorLiteral(queryEmbedding)
	query := squirrel.Select("id", "source_type", "source_id", "content", "metadata").
		Column(squirrel.Expr("1 - (embedding <=> ?::vector) AS similarity", lit)).
		From("knowledge_entries").
		Where(squirrel.Expr("1 - (embedding <=> ?::vector) >= ?", lit, threshold)).
		OrderBy("similarity DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if len(sourceTypes) > 0 {
		query = query.Where(squirrel.Eq{"source_type": sourceTypes})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge entries: %w", err)
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(
			&res.ID, &res.SourceType, &res.SourceID, &res.Content, &res.Metadata, &res.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// vectorLiteral renders a pgvector input literal, e.g. "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// cosineSimilarity computes the same metric the database search uses, for
// in-process verification of small result sets.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
