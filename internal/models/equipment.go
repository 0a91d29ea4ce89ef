package models

import (
	"time"

	"github.com/google/uuid"
)

type EquipmentCategory string

const (
	EquipmentCategoryTractor    EquipmentCategory = "tractor"
	EquipmentCategoryHarvester  EquipmentCategory = "harvester"
	EquipmentCategoryIrrigation EquipmentCategory = "irrigation"
	EquipmentCategoryTillage    EquipmentCategory = "tillage"
	EquipmentCategoryTransport  EquipmentCategory = "transport"
	EquipmentCategoryOther      EquipmentCategory = "other"
)

type Equipment struct {
	ID          uuid.UUID         `db:"id"`
	OwnerID     uuid.UUID         `db:"owner_id"`
	Name        string            `db:"name"`
	Category    EquipmentCategory `db:"category"`
	Description string            `db:"description"`
	Location    string            `db:"location"`
	DailyRate   float64           `db:"daily_rate"`
	Available   bool              `db:"available"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
}
