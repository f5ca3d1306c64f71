package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// NoteRepository handles day note database operations. The engine only
// reads notes; writing them belongs to the excluded web layer.
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListBetween retrieves a tracker's notes with note_date in [start, end]
func (r *NoteRepository) ListBetween(ctx context.Context, trackerID uuid.UUID, start, end time.Time) ([]*models.DayNote, error) {
	query := `
		SELECT id, tracker_id, note_date, content, sentiment_score, created_at
		FROM day_notes
		WHERE tracker_id = $1 AND note_date BETWEEN $2 AND $3 AND deleted_at IS NULL
		ORDER BY note_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, trackerID, models.DateOnly(start), models.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query day notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.DayNote
	for rows.Next() {
		note := &models.DayNote{}
		var sentiment sql.NullFloat64

		err := rows.Scan(
			&note.ID,
			&note.TrackerID,
			&note.NoteDate,
			&note.Content,
			&sentiment,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan day note: %w", err)
		}

		note.NoteDate = models.DateOnly(note.NoteDate)
		if sentiment.Valid {
			note.SentimentScore = &sentiment.Float64
		}

		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day notes: %w", err)
	}

	return notes, nil
}
