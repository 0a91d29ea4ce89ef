package models

import (
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceTypeEquipment SourceType = "equipment"
	SourceTypeUser      SourceType = "user"
	SourceTypeLabour    SourceType = "labour"
	SourceTypeReview    SourceType = "review"
	SourceTypeBooking   SourceType = "booking"
)

// ParseSourceType validates a source type string from external input.
func ParseSourceType(s string) (SourceType, bool) {
	switch SourceType(s) {
	case SourceTypeEquipment, SourceTypeUser, SourceTypeLabour, SourceTypeReview, SourceTypeBooking:
		return SourceType(s), true
	}
	return "", false
}

// KnowledgeEntry is one indexed record in the vector store. At most one
// live entry exists per (source_type, source_id) pair; repeated syncs of
// the same source row overwrite it in place.
type KnowledgeEntry struct {
	ID         uuid.UUID  `db:"id"`
	SourceType SourceType `db:"source_type"`
	SourceID   uuid.UUID  `db:"source_id"`
	Content    string     `db:"content"`
	Embedding  []float32  `db:"embedding"`
	Metadata   string     `db:"metadata"` // JSON snapshot of selected source fields
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// EmbeddingResult carries one embedding call outcome through the pipeline.
// Expected failures (empty text, model error, transport error) travel as
// Success=false values rather than Go errors.
type EmbeddingResult struct {
	Embedding []float32
	Success   bool
	Error     string
}
