package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// TemplateRepository handles task template database operations
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a new task template
func (r *TemplateRepository) Create(ctx context.Context, tmpl *models.TaskTemplate) error {
	query := `
		INSERT INTO task_templates (id, tracker_id, description, category, points, is_recurring, include_in_goal, time_of_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		tmpl.ID,
		tmpl.TrackerID,
		tmpl.Description,
		tmpl.Category,
		tmpl.Points,
		tmpl.IsRecurring,
		tmpl.IncludeInGoal,
		tmpl.TimeOfDay,
		now,
		now,
	).Scan(&tmpl.CreatedAt, &tmpl.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetByID retrieves a template regardless of tracker visibility. Callers
// that act on behalf of an owner must resolve the tracker first.
func (r *TemplateRepository) GetByID(ctx context.Context, templateID uuid.UUID) (*models.TaskTemplate, error) {
	tmpl := &models.TaskTemplate{}
	var deletedAt sql.NullTime

	query := `
		SELECT id, tracker_id, description, category, points, is_recurring, include_in_goal, time_of_day, created_at, updated_at, deleted_at
		FROM task_templates
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, templateID).Scan(
		&tmpl.ID,
		&tmpl.TrackerID,
		&tmpl.Description,
		&tmpl.Category,
		&tmpl.Points,
		&tmpl.IsRecurring,
		&tmpl.IncludeInGoal,
		&tmpl.TimeOfDay,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
		&deletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s: %w", templateID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if deletedAt.Valid {
		tmpl.DeletedAt = &deletedAt.Time
	}

	return tmpl, nil
}

// ListActive retrieves the non-deleted templates of a tracker
func (r *TemplateRepository) ListActive(ctx context.Context, trackerID uuid.UUID) ([]*models.TaskTemplate, error) {
	query := `
		SELECT id, tracker_id, description, category, points, is_recurring, include_in_goal, time_of_day, created_at, updated_at
		FROM task_templates
		WHERE tracker_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, trackerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.TaskTemplate
	for rows.Next() {
		tmpl := &models.TaskTemplate{}

		err := rows.Scan(
			&tmpl.ID,
			&tmpl.TrackerID,
			&tmpl.Description,
			&tmpl.Category,
			&tmpl.Points,
			&tmpl.IsRecurring,
			&tmpl.IncludeInGoal,
			&tmpl.TimeOfDay,
			&tmpl.CreatedAt,
			&tmpl.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// Update persists changes to description, category, points, and flags
func (r *TemplateRepository) Update(ctx context.Context, tmpl *models.TaskTemplate) error {
	query := `
		UPDATE task_templates
		SET description = $2, category = $3, points = $4, is_recurring = $5, include_in_goal = $6, time_of_day = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		tmpl.ID,
		tmpl.Description,
		tmpl.Category,
		tmpl.Points,
		tmpl.IsRecurring,
		tmpl.IncludeInGoal,
		tmpl.TimeOfDay,
		time.Now().UTC(),
	).Scan(&tmpl.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("template %s: %w", tmpl.ID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	return nil
}
