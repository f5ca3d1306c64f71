package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// PreferenceRepository handles user preference database operations
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get retrieves an owner's preferences, falling back to defaults when no
// row exists. Missing preferences are never an error.
func (r *PreferenceRepository) Get(ctx context.Context, ownerID uuid.UUID) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{}

	query := `
		SELECT owner_id, timezone, streak_threshold_pct, week_start_day, updated_at
		FROM user_preferences
		WHERE owner_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&prefs.OwnerID,
		&prefs.Timezone,
		&prefs.StreakThresholdPct,
		&prefs.WeekStartDay,
		&prefs.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return models.DefaultPreferences(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// Upsert stores an owner's preferences
func (r *PreferenceRepository) Upsert(ctx context.Context, prefs *models.UserPreferences) error {
	query := `
		INSERT INTO user_preferences (owner_id, timezone, streak_threshold_pct, week_start_day, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    streak_threshold_pct = EXCLUDED.streak_threshold_pct,
		    week_start_day = EXCLUDED.week_start_day,
		    updated_at = EXCLUDED.updated_at
	`

	prefs.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query,
		prefs.OwnerID,
		prefs.Timezone,
		prefs.StreakThresholdPct,
		prefs.WeekStartDay,
		prefs.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}
