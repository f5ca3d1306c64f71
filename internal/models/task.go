package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task instance
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusMissed     TaskStatus = "MISSED"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
)

// TimeOfDay is a coarse scheduling hint on a task template
type TimeOfDay string

const (
	TimeOfDayAny       TimeOfDay = "any"
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
)

// TaskTemplate defines a recurring task belonging to exactly one tracker.
// Points must never be negative; validation enforces this before persistence.
type TaskTemplate struct {
	ID            uuid.UUID  `json:"id"`
	TrackerID     uuid.UUID  `json:"tracker_id"`
	Description   string     `json:"description" validate:"required,max=500"`
	Category      string     `json:"category,omitempty" validate:"max=100"`
	Points        float64    `json:"points" validate:"gte=0"`
	IsRecurring   bool       `json:"is_recurring"`
	IncludeInGoal bool       `json:"include_in_goal"`
	TimeOfDay     TimeOfDay  `json:"time_of_day" validate:"time_of_day"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the template should receive new task instances
func (t *TaskTemplate) Active() bool {
	return t.DeletedAt == nil
}

// TaskInstance is one occurrence of a template inside a tracker instance.
// CompletedAt is non-nil iff Status is DONE.
type TaskInstance struct {
	ID          uuid.UUID  `json:"id"`
	InstanceID  uuid.UUID  `json:"instance_id"`
	TemplateID  uuid.UUID  `json:"template_id"`
	Status      TaskStatus `json:"status" validate:"task_status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MarkStatus applies a status transition, keeping the CompletedAt invariant.
// It returns a copy; persistence is the caller's job.
func (t TaskInstance) MarkStatus(status TaskStatus, now time.Time) TaskInstance {
	t.Status = status
	if status == TaskStatusDone {
		done := now.UTC()
		t.CompletedAt = &done
	} else {
		t.CompletedAt = nil
	}
	return t
}

// TaskCounts aggregates task instance statuses for one tracker instance
type TaskCounts struct {
	Total int `json:"total"`
	Done  int `json:"done"`
}

// CompletionPct returns the completion percentage, 0 for an empty instance
func (c TaskCounts) CompletionPct() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Done) / float64(c.Total) * 100
}

// TaskFact is the denormalized read model the points and insights engines
// consume: one row per task instance, joined with its template and parent
// instance.
type TaskFact struct {
	TaskID        uuid.UUID  `json:"task_id"`
	TemplateID    uuid.UUID  `json:"template_id"`
	InstanceID    uuid.UUID  `json:"instance_id"`
	TrackingDate  time.Time  `json:"tracking_date"`
	Status        TaskStatus `json:"status"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Points        float64    `json:"points"`
	IncludeInGoal bool       `json:"include_in_goal"`
	TimeOfDay     TimeOfDay  `json:"time_of_day"`
}
