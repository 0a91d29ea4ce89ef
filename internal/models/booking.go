package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is part of the source schema and the SourceType enum, but has no
// sync path: bookings are transactional rows, not searchable knowledge.
type Booking struct {
	ID          uuid.UUID     `db:"id"`
	EquipmentID uuid.UUID     `db:"equipment_id"`
	RenterID    uuid.UUID     `db:"renter_id"`
	StartDate   time.Time     `db:"start_date"`
	EndDate     time.Time     `db:"end_date"`
	TotalPrice  float64       `db:"total_price"`
	Status      BookingStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}
