package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// TrackerRepository handles tracker database operations
type TrackerRepository struct {
	db *DB
}

// NewTrackerRepository creates a new tracker repository
func NewTrackerRepository(db *DB) *TrackerRepository {
	return &TrackerRepository{db: db}
}

// Create inserts a new tracker
func (r *TrackerRepository) Create(ctx context.Context, tracker *models.Tracker) error {
	query := `
		INSERT INTO trackers (id, owner_id, name, time_mode, goal_target, goal_period, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		tracker.ID,
		tracker.OwnerID,
		tracker.Name,
		tracker.TimeMode,
		tracker.GoalTarget,
		tracker.GoalPeriod,
		now,
		now,
	).Scan(&tracker.CreatedAt, &tracker.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tracker: %w", err)
	}

	return nil
}

// GetOwned retrieves a tracker visible to the given owner
func (r *TrackerRepository) GetOwned(ctx context.Context, ownerID, trackerID uuid.UUID) (*models.Tracker, error) {
	tracker := &models.Tracker{}
	var goalTarget sql.NullFloat64

	query := `
		SELECT id, owner_id, name, time_mode, goal_target, goal_period, created_at, updated_at
		FROM trackers
		WHERE ` + visibleTrackers + ` AND id = $2
	`

	err := r.db.QueryRowContext(ctx, query, ownerID, trackerID).Scan(
		&tracker.ID,
		&tracker.OwnerID,
		&tracker.Name,
		&tracker.TimeMode,
		&goalTarget,
		&tracker.GoalPeriod,
		&tracker.CreatedAt,
		&tracker.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tracker %s: %w", trackerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracker: %w", err)
	}

	if goalTarget.Valid {
		tracker.GoalTarget = &goalTarget.Float64
	}

	return tracker, nil
}

// ListActive retrieves every visible tracker for an owner
func (r *TrackerRepository) ListActive(ctx context.Context, ownerID uuid.UUID) ([]*models.Tracker, error) {
	query := `
		SELECT id, owner_id, name, time_mode, goal_target, goal_period, created_at, updated_at
		FROM trackers
		WHERE ` + visibleTrackers + `
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trackers: %w", err)
	}
	defer rows.Close()

	var trackers []*models.Tracker
	for rows.Next() {
		tracker := &models.Tracker{}
		var goalTarget sql.NullFloat64

		err := rows.Scan(
			&tracker.ID,
			&tracker.OwnerID,
			&tracker.Name,
			&tracker.TimeMode,
			&goalTarget,
			&tracker.GoalPeriod,
			&tracker.CreatedAt,
			&tracker.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracker: %w", err)
		}

		if goalTarget.Valid {
			tracker.GoalTarget = &goalTarget.Float64
		}

		trackers = append(trackers, tracker)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trackers: %w", err)
	}

	return trackers, nil
}

// SoftDelete marks a tracker deleted; instances and tasks stay in place but
// become invisible through the ownership filter
// ListOwners returns the distinct owners with at least one active tracker.
// The scheduler fans a provisioning job out per owner.
func (r *TrackerRepository) ListOwners(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT owner_id FROM trackers WHERE deleted_at IS NULL`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func (r *TrackerRepository) SoftDelete(ctx context.Context, ownerID, trackerID uuid.UUID) error {
	query := `
		UPDATE trackers
		SET deleted_at = $3, updated_at = $3
		WHERE ` + visibleTrackers + ` AND id = $2
	`

	result, err := r.db.ExecContext(ctx, query, ownerID, trackerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tracker %s: %w", trackerID, models.ErrNotFound)
	}

	return nil
}
