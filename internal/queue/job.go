package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeProvisionTracker provisions the current period instance for
	// one tracker
	JobTypeProvisionTracker JobType = "provision_tracker"
	// JobTypeCheckAllTrackers provisions every active tracker of an owner
	JobTypeCheckAllTrackers JobType = "check_all_trackers"
	// JobTypeRecomputeInsights refreshes the cached insight summary for a
	// tracker
	JobTypeRecomputeInsights JobType = "recompute_insights"
)

// Job represents a unit of batch work in the queue
type Job struct {
	ID            uuid.UUID  `json:"id"`
	Type          JobType    `json:"type"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	TrackerID     *uuid.UUID `json:"tracker_id,omitempty"`     // absent for owner-wide jobs
	ReferenceDate *time.Time `json:"reference_date,omitempty"` // nil means provision for "today"
	CreatedAt     time.Time  `json:"created_at"`
	RetryCount    int        `json:"retry_count"`
	MaxRetries    int        `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, ownerID uuid.UUID, trackerID *uuid.UUID) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		OwnerID:    ownerID,
		TrackerID:  trackerID,
		CreatedAt:  time.Now().UTC(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
