package models

import (
	"time"

	"github.com/google/uuid"
)

// TimeMode determines how a tracker's periods are laid out on the calendar
type TimeMode string

const (
	TimeModeDaily   TimeMode = "daily"
	TimeModeWeekly  TimeMode = "weekly"
	TimeModeMonthly TimeMode = "monthly"
)

// GoalPeriod is the window over which point goals are measured.
// It is independent of the tracker's TimeMode.
type GoalPeriod string

const (
	GoalPeriodDaily  GoalPeriod = "daily"
	GoalPeriodWeekly GoalPeriod = "weekly"
)

// InstanceStatus represents the lifecycle state of a tracker instance
type InstanceStatus string

const (
	InstanceStatusOpen   InstanceStatus = "open"
	InstanceStatusClosed InstanceStatus = "closed"
	// InstanceStatusLegacy marks instances provisioned under a tracker's
	// previous time mode. Their recorded period bounds stay frozen.
	InstanceStatusLegacy InstanceStatus = "legacy"
)

// Tracker represents one habit/task tracker owned by a single user
type Tracker struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Name       string     `json:"name" validate:"required,max=200"`
	TimeMode   TimeMode   `json:"time_mode" validate:"time_mode"`
	GoalTarget *float64   `json:"goal_target,omitempty" validate:"omitempty,gte=0"`
	GoalPeriod GoalPeriod `json:"goal_period" validate:"goal_period"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Active reports whether the tracker is visible to its owner
func (t *Tracker) Active() bool {
	return t.DeletedAt == nil
}

// TrackerInstance is the materialized record of one period occurrence of a
// tracker. At most one instance exists per (tracker, period_start, period_end);
// the database enforces this with a unique constraint.
type TrackerInstance struct {
	ID           uuid.UUID      `json:"id"`
	TrackerID    uuid.UUID      `json:"tracker_id"`
	TrackingDate time.Time      `json:"tracking_date"`
	PeriodStart  time.Time      `json:"period_start"`
	PeriodEnd    time.Time      `json:"period_end"`
	Status       InstanceStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
