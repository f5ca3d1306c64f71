package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// TaskRepository handles task instance database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// GetOwned retrieves a task instance after verifying the chain of ownership
// up to a visible tracker
func (r *TaskRepository) GetOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.TaskInstance, error) {
	task := &models.TaskInstance{}
	var completedAt sql.NullTime

	query := `
		SELECT t.id, t.instance_id, t.template_id, t.status, t.completed_at, t.created_at, t.updated_at
		FROM task_instances t
		JOIN tracker_instances i ON i.id = t.instance_id
		WHERE t.id = $2 AND i.tracker_id IN ` + visibleTrackerIDs + `
	`

	err := r.db.QueryRowContext(ctx, query, ownerID, taskID).Scan(
		&task.ID,
		&task.InstanceID,
		&task.TemplateID,
		&task.Status,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", taskID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}

	return task, nil
}

// Update persists a status transition
func (r *TaskRepository) Update(ctx context.Context, task *models.TaskInstance) error {
	query := `
		UPDATE task_instances
		SET status = $2, completed_at = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at
	`

	var completedAt sql.NullTime
	if task.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *task.CompletedAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, task.ID, task.Status, completedAt, time.Now().UTC()).Scan(&task.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task %s: %w", task.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// CountsByInstance returns done/total task counts grouped by instance.
// Instances not present in the result had no tasks at all.
func (r *TaskRepository) CountsByInstance(ctx context.Context, instanceIDs []uuid.UUID) (map[uuid.UUID]models.TaskCounts, error) {
	counts := make(map[uuid.UUID]models.TaskCounts, len(instanceIDs))
	if len(instanceIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT instance_id, COUNT(*), COUNT(*) FILTER (WHERE status = 'DONE')
		FROM task_instances
		WHERE instance_id = ANY($1)
		GROUP BY instance_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(instanceIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query task counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var instanceID uuid.UUID
		var c models.TaskCounts
		if err := rows.Scan(&instanceID, &c.Total, &c.Done); err != nil {
			return nil, fmt.Errorf("failed to scan task counts: %w", err)
		}
		counts[instanceID] = c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task counts: %w", err)
	}

	return counts, nil
}

// ListFacts returns the denormalized task rows for a tracker whose parent
// instance period overlaps [start, end]. Template values (points, goal
// flag) are read live, so toggling include_in_goal shows up on the next
// call with no cache to chase.
func (r *TaskRepository) ListFacts(ctx context.Context, trackerID uuid.UUID, start, end time.Time) ([]models.TaskFact, error) {
	query := `
		SELECT t.id, t.template_id, t.instance_id, i.tracking_date, t.status,
		       tp.description, tp.category, tp.points, tp.include_in_goal, tp.time_of_day
		FROM task_instances t
		JOIN tracker_instances i ON i.id = t.instance_id
		JOIN task_templates tp ON tp.id = t.template_id
		WHERE i.tracker_id = $1
		  AND i.period_start <= $3
		  AND i.period_end >= $2
		ORDER BY i.tracking_date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, trackerID, models.DateOnly(start), models.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query task facts: %w", err)
	}
	defer rows.Close()

	var facts []models.TaskFact
	for rows.Next() {
		var f models.TaskFact
		err := rows.Scan(
			&f.TaskID,
			&f.TemplateID,
			&f.InstanceID,
			&f.TrackingDate,
			&f.Status,
			&f.Description,
			&f.Category,
			&f.Points,
			&f.IncludeInGoal,
			&f.TimeOfDay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task fact: %w", err)
		}
		f.TrackingDate = models.DateOnly(f.TrackingDate)
		facts = append(facts, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task facts: %w", err)
	}

	return facts, nil
}
