// Package streak computes completion streaks over a tracker's instance
// history.
//
// A streak is a run of consecutive periods whose completion rate meets the
// owner's threshold. Consecutive means the next period's date is exactly one
// calendar day later; instances with zero tasks are transparent — they
// neither extend nor break a run.
package streak

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/database"
	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/telemetry"
)

// Result is the outcome of a streak calculation
type Result struct {
	CurrentStreak     int         `json:"current_streak"`
	LongestStreak     int         `json:"longest_streak"`
	StreakActive      bool        `json:"streak_active"`
	LastCompletedDate *time.Time  `json:"last_completed_date,omitempty"`
	RunInstanceIDs    []uuid.UUID `json:"-"` // instances forming the active run, newest first
}

// Engine walks instance history and applies the threshold policy
type Engine struct {
	trackers  database.TrackerStore
	instances database.InstanceStore
	tasks     database.TaskStore
	prefs     database.PreferenceStore
	logger    *zap.Logger
}

// NewEngine creates a streak engine
func NewEngine(
	trackers database.TrackerStore,
	instances database.InstanceStore,
	tasks database.TaskStore,
	prefs database.PreferenceStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		trackers:  trackers,
		instances: instances,
		tasks:     tasks,
		prefs:     prefs,
		logger:    logger,
	}
}

// Calculate computes current/longest streak as of asOf. The threshold comes
// from the owner's preferences. A tracker with no instances yields all
// zeros, never an error.
func (e *Engine) Calculate(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "streak.Calculate")
	defer span.End()
	span.SetAttributes(attribute.String("tracker_id", trackerID.String()))

	tracker, err := e.trackers.GetOwned(ctx, ownerID, trackerID)
	if err != nil {
		return nil, err
	}

	prefs, err := e.prefs.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	instances, err := e.instances.ListUpTo(ctx, tracker.ID, asOf, 0)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return &Result{}, nil
	}

	ids := make([]uuid.UUID, len(instances))
	for i, inst := range instances {
		ids[i] = inst.ID
	}
	counts, err := e.tasks.CountsByInstance(ctx, ids)
	if err != nil {
		return nil, err
	}

	return compute(instances, counts, prefs.StreakThresholdPct, asOf), nil
}

// compute is the pure backward scan. instances must be ordered by
// tracking_date descending with every date <= asOf.
func compute(instances []*models.TrackerInstance, counts map[uuid.UUID]models.TaskCounts, thresholdPct float64, asOf time.Time) *Result {
	res := &Result{CurrentStreak: -1} // -1 marks "not yet set"

	temp := 0
	var tempIDs []uuid.UUID
	var runHead time.Time      // most recent date of the open run
	var firstRunHead time.Time // most recent date of the first closed qualifying run
	firstRunSeen := false
	var prevDate time.Time // oldest date counted into the open run so far

	closeRun := func() {
		if temp > res.LongestStreak {
			res.LongestStreak = temp
		}
		if res.CurrentStreak == -1 {
			res.CurrentStreak = temp
			if temp > 0 {
				firstRunHead = runHead
				firstRunSeen = true
				res.RunInstanceIDs = append([]uuid.UUID(nil), tempIDs...)
			}
		}
		temp = 0
		tempIDs = tempIDs[:0]
	}

	for _, inst := range instances {
		c := counts[inst.ID]
		date := models.DateOnly(inst.TrackingDate)

		if c.Total == 0 {
			// Zero-task periods are invisible to the streak, but a
			// contiguous one carries the run across its date so the gap
			// check on the next counted instance still passes.
			if temp > 0 && models.DaysBetween(date, prevDate) == 1 {
				prevDate = date
			}
			continue
		}

		if c.CompletionPct() >= thresholdPct {
			if res.LastCompletedDate == nil {
				d := date
				res.LastCompletedDate = &d
			}
			// Scanning backward, the previous counted instance is one day
			// after this one iff the run is unbroken.
			if temp > 0 && models.DaysBetween(date, prevDate) != 1 {
				closeRun()
			}
			if temp == 0 {
				runHead = date
			}
			temp++
			tempIDs = append(tempIDs, inst.ID)
			prevDate = date
		} else {
			closeRun()
		}
	}
	closeRun()

	if res.CurrentStreak == -1 {
		res.CurrentStreak = 0
	}

	// The streak is alive only if its most recent period is today or
	// yesterday relative to asOf — tolerant of a day not yet logged.
	if firstRunSeen && models.DaysBetween(firstRunHead, models.DateOnly(asOf)) <= 1 {
		res.StreakActive = true
	} else {
		// A broken streak has zero current length no matter how long the
		// most recent run was.
		res.CurrentStreak = 0
		res.RunInstanceIDs = nil
	}

	return res
}
