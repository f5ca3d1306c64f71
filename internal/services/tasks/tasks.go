// Package tasks owns the task status transition: the one write path that
// feeds the points and streak engines. The sequence is explicit — persist,
// invalidate, recompute, emit — so ordering and failure handling stay
// visible.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/queue"
	"github.com/14harshaldhote/trackpro/internal/services/points"
	"github.com/14harshaldhote/trackpro/internal/services/streak"
	"github.com/14harshaldhote/trackpro/internal/telemetry"
	"github.com/14harshaldhote/trackpro/internal/validation"
)

// PointsCalculator is the slice of the points engine the transition needs
type PointsCalculator interface {
	CalculateCurrent(ctx context.Context, ownerID, trackerID uuid.UUID, nowUTC time.Time) (*points.Result, error)
}

// StreakCalculator is the slice of the streak engine the transition needs
type StreakCalculator interface {
	Calculate(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*streak.Result, error)
}

// TransitionResult reports the task's new state and the recomputed
// aggregates after a status change
type TransitionResult struct {
	Task       *models.TaskInstance   `json:"task"`
	Points     *points.Result         `json:"points"`
	Streak     *streak.Result         `json:"streak"`
	Milestones []*queue.MilestoneEvent `json:"milestones,omitempty"`
}

// Service applies task status transitions
type Service struct {
	tasks     database.TaskStore
	instances database.InstanceStore
	trackers  database.TrackerStore
	points    PointsCalculator
	streaks   StreakCalculator
	cache     cache.Cache
	events    queue.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the task transition service
func NewService(
	tasks database.TaskStore,
	instances database.InstanceStore,
	trackers database.TrackerStore,
	pointsEngine PointsCalculator,
	streakEngine StreakCalculator,
	c cache.Cache,
	events queue.EventPublisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		tasks:     tasks,
		instances: instances,
		trackers:  trackers,
		points:    pointsEngine,
		streaks:   streakEngine,
		cache:     c,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UpdateStatus transitions a task instance to newStatus, recomputes the
// tracker's points and streak, and emits any milestone events crossed by
// the change. Event publishing is best-effort; a publish failure is logged
// and the transition still succeeds.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, taskID uuid.UUID, newStatus models.TaskStatus) (*TransitionResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "tasks.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("task_id", taskID.String()),
		attribute.String("new_status", string(newStatus)),
	)

	if err := validation.ValidateTaskStatus(newStatus); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	inst, err := s.instances.GetByID(ctx, task.InstanceID)
	if err != nil {
		return nil, err
	}
	tracker, err := s.trackers.GetOwned(ctx, ownerID, inst.TrackerID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Snapshot aggregates before the write so crossings are detectable.
	prevPoints, err := s.points.CalculateCurrent(ctx, ownerID, tracker.ID, now)
	if err != nil {
		return nil, fmt.Errorf("points before transition: %w", err)
	}
	prevStreak, err := s.streaks.Calculate(ctx, ownerID, tracker.ID, now)
	if err != nil {
		return nil, fmt.Errorf("streak before transition: %w", err)
	}

	updated := task.MarkStatus(newStatus, now)
	updated.UpdatedAt = now
	if err := s.tasks.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("persist status transition: %w", err)
	}

	if err := s.cache.Invalidate(ctx, cache.TrackerKeys(tracker.ID)...); err != nil {
		s.logger.Warn("cache_invalidation_failed",
			zap.Error(err),
			zap.String("tracker_id", tracker.ID.String()))
	}

	curPoints, err := s.points.CalculateCurrent(ctx, ownerID, tracker.ID, now)
	if err != nil {
		return nil, fmt.Errorf("points after transition: %w", err)
	}
	curStreak, err := s.streaks.Calculate(ctx, ownerID, tracker.ID, now)
	if err != nil {
		return nil, fmt.Errorf("streak after transition: %w", err)
	}

	res := &TransitionResult{Task: &updated, Points: curPoints, Streak: curStreak}
	res.Milestones = s.emitMilestones(ctx, ownerID, tracker.ID, prevPoints, curPoints, prevStreak, curStreak)

	s.logger.Info("task_status_updated",
		zap.String("task_id", taskID.String()),
		zap.String("tracker_id", tracker.ID.String()),
		zap.String("status", string(newStatus)),
		zap.Int("milestones", len(res.Milestones)))

	return res, nil
}

func (s *Service) emitMilestones(
	ctx context.Context,
	ownerID, trackerID uuid.UUID,
	prevPoints, curPoints *points.Result,
	prevStreak, curStreak *streak.Result,
) []*queue.MilestoneEvent {
	var events []*queue.MilestoneEvent

	for _, m := range queue.CrossedStreakMilestones(prevStreak.CurrentStreak, curStreak.CurrentStreak) {
		events = append(events, queue.NewMilestoneEvent(
			queue.MilestoneTypeStreak, ownerID, trackerID,
			float64(m), float64(curStreak.CurrentStreak)))
	}
	for _, m := range queue.CrossedGoalMilestones(prevPoints.ProgressPercentage, curPoints.ProgressPercentage) {
		events = append(events, queue.NewMilestoneEvent(
			queue.MilestoneTypeGoalProgress, ownerID, trackerID,
			m, curPoints.ProgressPercentage))
	}

	for _, ev := range events {
		if err := s.events.PublishMilestone(ctx, ev); err != nil {
			s.logger.Warn("milestone_publish_failed",
				zap.Error(err),
				zap.String("type", string(ev.Type)),
				zap.Float64("threshold", ev.Threshold),
				zap.String("tracker_id", trackerID.String()))
		}
	}
	return events
}
