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

type UserRepository struct {
	db     DB
	logger *zap.Logger
}

func NewUserRepository(db DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) List(ctx context.Context, since *time.Time) ([]*models.User, error) {
	query := squirrel.Select("id", "name", "email", "bio", "region", "role", "created_at", "updated_at").
		From("users").
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

	var results []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Bio, &user.Region,
			&user.Role, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, &user)
	}

	return results, rows.Err()
}

// GetName is a best-effort name lookup for review formatting; an unknown
// id returns an empty string, not an error.
func (r *UserRepository) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	query := squirrel.Select("name").
		From("users").
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
