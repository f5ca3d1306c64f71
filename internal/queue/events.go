package queue

import (
	"time"

	"github.com/google/uuid"
)

// MilestoneType identifies what kind of progress a milestone event reports
type MilestoneType string

const (
	MilestoneTypeStreak       MilestoneType = "streak"
	MilestoneTypeGoalProgress MilestoneType = "goal_progress"
)

// Milestone thresholds. A notification collaborator consumes the events;
// this core only detects the crossings.
var (
	StreakMilestones = []int{7, 14, 30, 100}
	GoalMilestones   = []float64{50, 100}
)

// MilestoneEvent is published when a tracker crosses a streak length or
// goal-progress threshold
type MilestoneEvent struct {
	ID         uuid.UUID     `json:"id"`
	OwnerID    uuid.UUID     `json:"owner_id"`
	TrackerID  uuid.UUID     `json:"tracker_id"`
	Type       MilestoneType `json:"type"`
	Threshold  float64       `json:"threshold"`
	Value      float64       `json:"value"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewMilestoneEvent creates a milestone event
func NewMilestoneEvent(eventType MilestoneType, ownerID, trackerID uuid.UUID, threshold, value float64) *MilestoneEvent {
	return &MilestoneEvent{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		TrackerID:  trackerID,
		Type:       eventType,
		Threshold:  threshold,
		Value:      value,
		OccurredAt: time.Now().UTC(),
	}
}

// CrossedStreakMilestones returns the streak thresholds newly reached when a
// streak moves from prev to cur
func CrossedStreakMilestones(prev, cur int) []int {
	var crossed []int
	for _, m := range StreakMilestones {
		if prev < m && cur >= m {
			crossed = append(crossed, m)
		}
	}
	return crossed
}

// CrossedGoalMilestones returns the goal-progress thresholds newly reached
// when progress moves from prev to cur percent
func CrossedGoalMilestones(prev, cur float64) []float64 {
	var crossed []float64
	for _, m := range GoalMilestones {
		if prev < m && cur >= m {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
