package models

import (
	"time"

	"github.com/google/uuid"
)

// LabourProfile describes a worker available for hire; one per user.
type LabourProfile struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Headline        string    `db:"headline"`
	Skills          []string  `db:"skills"`
	ExperienceYears int       `db:"experience_years"`
	Availability    string    `db:"availability"` // e.g. "weekends", "harvest season"
	Region          string    `db:"region"`
	HourlyRate      float64   `db:"hourly_rate"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
