package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/14harshaldhote/trackpro/internal/models"
)

// The engine services depend on these narrow interfaces rather than the
// concrete repositories, so tests can substitute in-memory fakes.

// TrackerStore is the tracker access the engines need
type TrackerStore interface {
	GetOwned(ctx context.Context, ownerID, trackerID uuid.UUID) (*models.Tracker, error)
	ListActive(ctx context.Context, ownerID uuid.UUID) ([]*models.Tracker, error)
}

// TemplateStore is the template access the provisioner needs
type TemplateStore interface {
	ListActive(ctx context.Context, trackerID uuid.UUID) ([]*models.TaskTemplate, error)
}

// InstanceStore is the instance access for provisioning and streak scans
type InstanceStore interface {
	GetByPeriod(ctx context.Context, trackerID uuid.UUID, start, end time.Time) (*models.TrackerInstance, error)
	GetByID(ctx context.Context, instanceID uuid.UUID) (*models.TrackerInstance, error)
	ListUpTo(ctx context.Context, trackerID uuid.UUID, until time.Time, limit int) ([]*models.TrackerInstance, error)
	CreateWithTasks(ctx context.Context, inst *models.TrackerInstance, tasks []*models.TaskInstance) error
}

// TaskStore is the task instance access for lifecycle, points, and insights
type TaskStore interface {
	GetOwned(ctx context.Context, ownerID, taskID uuid.UUID) (*models.TaskInstance, error)
	Update(ctx context.Context, task *models.TaskInstance) error
	CountsByInstance(ctx context.Context, instanceIDs []uuid.UUID) (map[uuid.UUID]models.TaskCounts, error)
	ListFacts(ctx context.Context, trackerID uuid.UUID, start, end time.Time) ([]models.TaskFact, error)
}

// NoteStore is the read-only note access for mood correlation
type NoteStore interface {
	ListBetween(ctx context.Context, trackerID uuid.UUID, start, end time.Time) ([]*models.DayNote, error)
}

// PreferenceStore is the per-owner settings access
type PreferenceStore interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*models.UserPreferences, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TrackerStore    = (*TrackerRepository)(nil)
	_ TemplateStore   = (*TemplateRepository)(nil)
	_ InstanceStore   = (*InstanceRepository)(nil)
	_ TaskStore       = (*TaskRepository)(nil)
	_ NoteStore       = (*NoteRepository)(nil)
	_ PreferenceStore = (*PreferenceRepository)(nil)
)
