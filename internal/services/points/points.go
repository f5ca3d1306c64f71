// Package points computes goal progress for a tracker over its current
// goal period.
package points

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/cache"
	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/period"
	"github.com/14harshaldhote/trackpro/internal/telemetry"
)

// Breakdown describes which tasks fed the points total
type Breakdown struct {
	Total     int `json:"total"`     // tasks in the window
	Completed int `json:"completed"` // tasks with status DONE
	Included  int `json:"included"`  // completed tasks counted toward the goal
	Excluded  int `json:"excluded"`  // completed tasks excluded from the goal
}

// Result is the goal progress for one tracker's current goal period
type Result struct {
	CurrentPoints      float64   `json:"current_points"`
	TargetPoints       float64   `json:"target_points"`
	ProgressPercentage float64   `json:"progress_percentage"`
	GoalMet            bool      `json:"goal_met"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
	Breakdown          Breakdown `json:"breakdown"`
}

// Engine sums completed task points against the tracker's goal target
type Engine struct {
	trackers database.TrackerStore
	tasks    database.TaskStore
	prefs    database.PreferenceStore
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewEngine creates a points engine
func NewEngine(
	trackers database.TrackerStore,
	tasks database.TaskStore,
	prefs database.PreferenceStore,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		trackers: trackers,
		tasks:    tasks,
		prefs:    prefs,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// CalculateCurrent computes progress for the goal period containing the
// owner's local today. Only DONE tasks whose template is included in the
// goal contribute points. A missing or non-positive target yields zero
// progress and GoalMet false regardless of points earned.
func (e *Engine) CalculateCurrent(ctx context.Context, ownerID, trackerID uuid.UUID, nowUTC time.Time) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "points.CalculateCurrent")
	defer span.End()
	span.SetAttributes(attribute.String("tracker_id", trackerID.String()))

	tracker, err := e.trackers.GetOwned(ctx, ownerID, trackerID)
	if err != nil {
		return nil, err
	}

	if cached, ok, err := e.cache.Get(ctx, cache.PointsKey(tracker.ID)); err == nil && ok {
		var res Result
		if err := json.Unmarshal(cached, &res); err == nil {
			return &res, nil
		}
	} else if err != nil {
		e.logger.Warn("points_cache_read_failed", zap.Error(err), zap.String("tracker_id", tracker.ID.String()))
	}

	prefs, err := e.prefs.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := period.LocalToday(nowUTC, prefs.Timezone)
	start, end := goalWindow(tracker.GoalPeriod, today, prefs.WeekStartDay)

	facts, err := e.tasks.ListFacts(ctx, tracker.ID, start, end)
	if err != nil {
		return nil, err
	}

	res := tally(tracker, facts, start, end)

	if payload, err := json.Marshal(res); err == nil {
		if err := e.cache.Set(ctx, cache.PointsKey(tracker.ID), payload, e.cacheTTL); err != nil {
			e.logger.Warn("points_cache_write_failed", zap.Error(err), zap.String("tracker_id", tracker.ID.String()))
		}
	}

	return res, nil
}

// goalWindow returns the goal period containing today. Unknown goal
// periods fall back to daily.
func goalWindow(gp models.GoalPeriod, today time.Time, weekStartDay int) (start, end time.Time) {
	if gp == models.GoalPeriodWeekly {
		return period.WeekBoundaries(today, weekStartDay)
	}
	return today, today
}

// tally is the pure aggregation over the window's task facts
func tally(tracker *models.Tracker, facts []models.TaskFact, start, end time.Time) *Result {
	res := &Result{PeriodStart: start, PeriodEnd: end}

	for _, f := range facts {
		res.Breakdown.Total++
		if f.Status != models.TaskStatusDone {
			continue
		}
		res.Breakdown.Completed++
		if !f.IncludeInGoal {
			res.Breakdown.Excluded++
			continue
		}
		res.Breakdown.Included++
		res.CurrentPoints += f.Points
	}

	if tracker.GoalTarget != nil {
		res.TargetPoints = *tracker.GoalTarget
	}
	if res.TargetPoints > 0 {
		res.ProgressPercentage = res.CurrentPoints / res.TargetPoints * 100
		res.GoalMet = res.CurrentPoints >= res.TargetPoints
	}

	return res
}
