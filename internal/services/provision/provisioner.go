// Package provision materializes period-scoped tracker instances.
//
// Provisioning is lazy: an instance for a period exists only once something
// asks for it. The idempotency contract is create-or-fetch — callers may
// race freely, and the database unique constraint on
// (tracker_id, period_start, period_end) decides the winner.
package provision

import (
	"context"
	"errors"
	"fmt"
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

// Service provisions tracker instances and their task sets
type Service struct {
	trackers  database.TrackerStore
	templates database.TemplateStore
	instances database.InstanceStore
	prefs     database.PreferenceStore
	cache     cache.Cache
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a provisioning service
func NewService(
	trackers database.TrackerStore,
	templates database.TemplateStore,
	instances database.InstanceStore,
	prefs database.PreferenceStore,
	c cache.Cache,
	logger *zap.Logger,
) *Service {
	return &Service{
		trackers:  trackers,
		templates: templates,
		instances: instances,
		prefs:     prefs,
		cache:     c,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the service clock; tests pin time with this
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TrackerFailure records one tracker's provisioning error inside a batch
type TrackerFailure struct {
	TrackerID uuid.UUID `json:"tracker_id"`
	Err       error     `json:"-"`
	Message   string    `json:"message"`
}

// BatchReport summarizes a CheckAllTrackers run
type BatchReport struct {
	Provisioned int              `json:"provisioned"`
	Existing    int              `json:"existing"`
	Failed      []TrackerFailure `json:"failed,omitempty"`
}

// EnsureInstance returns the instance covering referenceDate for the
// tracker, creating it together with one TODO task per active template if
// it does not exist yet. The returned bool is true when this call created
// the instance.
//
// Two concurrent calls for the same period cannot both create: the loser
// of the insert race gets models.ErrConflict from the store, discards its
// attempt, and fetches the winner's row.
func (s *Service) EnsureInstance(ctx context.Context, ownerID, trackerID uuid.UUID, referenceDate time.Time) (*models.TrackerInstance, bool, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "provision.EnsureInstance")
	defer span.End()
	span.SetAttributes(attribute.String("tracker_id", trackerID.String()))

	tracker, err := s.trackers.GetOwned(ctx, ownerID, trackerID)
	if err != nil {
		return nil, false, err
	}

	start, end := period.Bounds(tracker.TimeMode, referenceDate)

	existing, err := s.instances.GetByPeriod(ctx, tracker.ID, start, end)
	if err == nil {
		// Idempotency contract: an existing instance is returned untouched,
		// no task re-creation.
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	templates, err := s.templates.ListActive(ctx, tracker.ID)
	if err != nil {
		return nil, false, err
	}

	inst := &models.TrackerInstance{
		ID:           uuid.New(),
		TrackerID:    tracker.ID,
		TrackingDate: models.DateOnly(referenceDate),
		PeriodStart:  start,
		PeriodEnd:    end,
		Status:       models.InstanceStatusOpen,
	}

	tasks := make([]*models.TaskInstance, 0, len(templates))
	for _, tmpl := range templates {
		tasks = append(tasks, &models.TaskInstance{
			ID:         uuid.New(),
			InstanceID: inst.ID,
			TemplateID: tmpl.ID,
			Status:     models.TaskStatusTodo,
		})
	}

	err = s.instances.CreateWithTasks(ctx, inst, tasks)
	if err == nil {
		s.invalidate(ctx, tracker.ID)
		s.logger.Info("provisioned_instance",
			zap.String("tracker_id", tracker.ID.String()),
			zap.String("period_start", start.Format(time.DateOnly)),
			zap.String("period_end", end.Format(time.DateOnly)),
			zap.Int("tasks", len(tasks)),
		)
		return inst, true, nil
	}

	if errors.Is(err, models.ErrConflict) {
		// Lost the race; the winning row must exist now. One retry only.
		s.logger.Debug("provision_conflict_refetching",
			zap.String("tracker_id", tracker.ID.String()),
			zap.String("period_start", start.Format(time.DateOnly)),
		)
		winner, fetchErr := s.instances.GetByPeriod(ctx, tracker.ID, start, end)
		if fetchErr != nil {
			return nil, false, fmt.Errorf("refetch after provisioning conflict: %w", fetchErr)
		}
		return winner, false, nil
	}

	return nil, false, err
}

// EnsureToday provisions the instance for the owner's local "today",
// resolved through their timezone preference
func (s *Service) EnsureToday(ctx context.Context, ownerID, trackerID uuid.UUID) (*models.TrackerInstance, bool, error) {
	prefs, err := s.prefs.Get(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	return s.EnsureInstance(ctx, ownerID, trackerID, period.LocalToday(s.now().UTC(), prefs.Timezone))
}

// CheckAllTrackers provisions the referenceDate period for every active
// tracker of an owner. One tracker's failure never aborts the batch; each
// failure is logged and reported individually.
func (s *Service) CheckAllTrackers(ctx context.Context, ownerID uuid.UUID, referenceDate time.Time) (*BatchReport, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "provision.CheckAllTrackers")
	defer span.End()

	trackers, err := s.trackers.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{}
	for _, tracker := range trackers {
		_, created, err := s.EnsureInstance(ctx, ownerID, tracker.ID, referenceDate)
		if err != nil {
			s.logger.Error("batch_provisioning_tracker_failed",
				zap.String("owner_id", ownerID.String()),
				zap.String("tracker_id", tracker.ID.String()),
				zap.Error(err),
			)
			report.Failed = append(report.Failed, TrackerFailure{
				TrackerID: tracker.ID,
				Err:       err,
				Message:   err.Error(),
			})
			continue
		}
		if created {
			report.Provisioned++
		} else {
			report.Existing++
		}
	}

	return report, nil
}

func (s *Service) invalidate(ctx context.Context, trackerID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.TrackerKeys(trackerID)...); err != nil {
		s.logger.Warn("cache_invalidation_failed",
			zap.String("tracker_id", trackerID.String()),
			zap.Error(err),
		)
	}
}
