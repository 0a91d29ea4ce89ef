package repository

import (
	"context"
	"errors"
	"time"

	"agrihire/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EquipmentRepository struct {
	db     DB
	logger *zap.Logger
}

func NewEquipmentRepository(db DB, logger *zap.Logger) *EquipmentRepository {
	return &EquipmentRepository{
		db:     db,
		logger: logger,
	}
}

// List returns equipment rows, restricted to those modified at or after
// since when it is non-nil.
func (r *EquipmentRepository) List(ctx context.Context, since *time.Time) ([]*models.Equipment, error) {
	query := squirrel.Select("id", "owner_id", "name", "category", "description", "location", "daily_rate", "available", "created_at", "updated_at").
		From("equipment").
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

	var results []*models.Equipment
	for rows.Next() {
		var eq models.Equipment
		if err := rows.Scan(
			&eq.ID, &eq.OwnerID, &eq.Name, &eq.Category, &eq.Description,
			&eq.Location, &eq.DailyRate, &eq.Available, &eq.CreatedAt, &eq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &eq)
	}

	return results, rows.Err()
}

// GetName is a best-effort name lookup for review formatting; an unknown
// id returns an empty string, not an error.
func (r *EquipmentRepository) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	query := squirrel.Select("name").
		From("equipment").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return "", err
	}

	var name string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return name, nil
}
