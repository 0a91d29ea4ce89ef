package repository

import (
	"context"
	"time"

	"agrihire/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type ReviewRepository struct {
	db     DB
	logger *zap.Logger
}

func NewReviewRepository(db DB, logger *zap.Logger) *ReviewRepository {
	return &ReviewRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReviewRepository) List(ctx context.Context, since *time.Time) ([]*models.Review, error) {
	query := squirrel.Select("id", "equipment_id", "reviewer_id", "rating", "comment", "created_at", "updated_at").
		From("reviews").
		OrderBy("updated_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"updated_at": *since})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.Review
	for rows.Next() {
		var rev models.Review
		if err := rows.Scan(
			&rev.ID, &rev.EquipmentID, &rev.ReviewerID, &rev.Rating,
			&rev.Comment, &rev.CreatedAt, &rev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &rev)
	}

	return results, rows.Err()
}
