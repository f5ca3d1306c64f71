package models

import (
	"time"

	"github.com/google/uuid"
)

// DayNote is a free-text journal entry attached to a tracker and a calendar
// date. SentimentScore, when present, is a precomputed value in [-1, 1].
// Notes are read-only input to the insights engine.
type DayNote struct {
	ID             uuid.UUID  `json:"id"`
	TrackerID      uuid.UUID  `json:"tracker_id"`
	NoteDate       time.Time  `json:"note_date"`
	Content        string     `json:"content"`
	SentimentScore *float64   `json:"sentiment_score,omitempty" validate:"omitempty,gte=-1,lte=1"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}
