package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// InstanceRepository handles tracker instance database operations
type InstanceRepository struct {
	db *DB
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

const instanceColumns = `id, tracker_id, tracking_date, period_start, period_end, status, created_at, updated_at`

func scanInstance(row interface{ Scan(...any) error }) (*models.TrackerInstance, error) {
	inst := &models.TrackerInstance{}
	err := row.Scan(
		&inst.ID,
		&inst.TrackerID,
		&inst.TrackingDate,
		&inst.PeriodStart,
		&inst.PeriodEnd,
		&inst.Status,
		&inst.CreatedAt,
		&inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inst.TrackingDate = models.DateOnly(inst.TrackingDate)
	inst.PeriodStart = models.DateOnly(inst.PeriodStart)
	inst.PeriodEnd = models.DateOnly(inst.PeriodEnd)
	return inst, nil
}

// GetByPeriod retrieves the instance for an exact (tracker, period) key
func (r *InstanceRepository) GetByPeriod(ctx context.Context, trackerID uuid.UUID, start, end time.Time) (*models.TrackerInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM tracker_instances
		WHERE tracker_id = $1 AND period_start = $2 AND period_end = $3
	`

	inst, err := scanInstance(r.db.QueryRowContext(ctx, query, trackerID, models.DateOnly(start), models.DateOnly(end)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("instance for tracker %s: %w", trackerID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	return inst, nil
}

// GetByID retrieves an instance by primary key
func (r *InstanceRepository) GetByID(ctx context.Context, instanceID uuid.UUID) (*models.TrackerInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM tracker_instances
		WHERE id = $1
	`

	inst, err := scanInstance(r.db.QueryRowContext(ctx, query, instanceID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("instance %s: %w", instanceID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	return inst, nil
}

// ListUpTo retrieves instances with tracking_date <= until, newest first.
// limit <= 0 means no limit. This feeds the streak engine's backward scan.
func (r *InstanceRepository) ListUpTo(ctx context.Context, trackerID uuid.UUID, until time.Time, limit int) ([]*models.TrackerInstance, error) {
	query := `
		SELECT ` + instanceColumns + `
		FROM tracker_instances
		WHERE tracker_id = $1 AND tracking_date <= $2
		ORDER BY tracking_date DESC
	`
	args := []any{trackerID, models.DateOnly(until)}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var instances []*models.TrackerInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instances: %w", err)
	}

	return instances, nil
}

// CreateWithTasks inserts the instance and its task set in one transaction.
// The tasks are written with a single multi-row INSERT so provisioning a
// tracker with many templates stays one round trip.
//
// A unique violation on (tracker_id, period_start, period_end) rolls the
// whole transaction back and surfaces as models.ErrConflict so the
// provisioner can re-fetch the winning row.
func (r *InstanceRepository) CreateWithTasks(ctx context.Context, inst *models.TrackerInstance, tasks []*models.TaskInstance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	instanceQuery := `
		INSERT INTO tracker_instances (id, tracker_id, tracking_date, period_start, period_end, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, instanceQuery,
		inst.ID,
		inst.TrackerID,
		models.DateOnly(inst.TrackingDate),
		models.DateOnly(inst.PeriodStart),
		models.DateOnly(inst.PeriodEnd),
		inst.Status,
		now,
	).Scan(&inst.CreatedAt, &inst.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("instance for tracker %s period %s: %w",
				inst.TrackerID, inst.PeriodStart.Format(time.DateOnly), models.ErrConflict)
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}

	if len(tasks) > 0 {
		var sb strings.Builder
		sb.WriteString(`INSERT INTO task_instances (id, instance_id, template_id, status, created_at, updated_at) VALUES `)
		args := make([]any, 0, len(tasks)*5+1)
		args = append(args, now)
		for i, task := range tasks {
			if i > 0 {
				sb.WriteString(", ")
			}
			base := len(args)
			fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $1, $1)", base+1, base+2, base+3, base+4)
			args = append(args, task.ID, task.InstanceID, task.TemplateID, task.Status)
		}

		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to bulk-create task instances: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit instance creation: %w", err)
	}

	return nil
}

// UpdateStatus moves an instance between open/closed/legacy
func (r *InstanceRepository) UpdateStatus(ctx context.Context, instanceID uuid.UUID, status models.InstanceStatus) error {
	query := `
		UPDATE tracker_instances
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, instanceID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("instance %s: %w", instanceID, models.ErrNotFound)
	}

	return nil
}
