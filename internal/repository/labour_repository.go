package repository

import (
	"context"
	"time"

	"agrihire/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type LabourRepository struct {
	db     DB
	logger *zap.Logger
}

func NewLabourRepository(db DB, logger *zap.Logger) *LabourRepository {
	return &LabourRepository{
		db:     db,
		logger: logger,
	}
}

func (r *LabourRepository) List(ctx context.Context, since *time.Time) ([]*models.LabourProfile, error) {
	query := squirrel.Select("id", "user_id", "headline", "skills", "experience_years", "availability", "region", "hourly_rate", "created_at", "updated_at").
		From("labour_profiles").
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

	var results []*models.LabourProfile
	for rows.Next() {
		var lp models.LabourProfile
		if err := rows.Scan(
			&lp.ID, &lp.UserID, &lp.Headline, &lp.Skills, &lp.ExperienceYears,
			&lp.Availability, &lp.Region, &lp.HourlyRate, &lp.CreatedAt, &lp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &lp)
	}

	return results, rows.Err()
}
