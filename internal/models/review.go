package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID          uuid.UUID `db:"id"`
	EquipmentID uuid.UUID `db:"equipment_id"`
	ReviewerID  uuid.UUID `db:"reviewer_id"`
	Rating      int       `db:"rating"` // 1..5
	Comment     string    `db:"comment"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
