// Package workers consumes provisioning and analytics jobs from the queue
// and drives the engines. Jobs that keep failing are retried up to their
// budget and then dead-lettered.
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/models"
	"github.com/14harshaldhote/trackpro/internal/queue"
	"github.com/14harshaldhote/trackpro/internal/services/insights"
	"github.com/14harshaldhote/trackpro/internal/services/provision"
)

// Provisioner is the slice of the provisioning service that jobs invoke
type Provisioner interface {
	EnsureInstance(ctx context.Context, ownerID, trackerID uuid.UUID, referenceDate time.Time) (*models.TrackerInstance, bool, error)
	EnsureToday(ctx context.Context, ownerID, trackerID uuid.UUID) (*models.TrackerInstance, bool, error)
	CheckAllTrackers(ctx context.Context, ownerID uuid.UUID, referenceDate time.Time) (*provision.BatchReport, error)
}

// InsightAnalyzer refreshes a tracker's cached insight summary
type InsightAnalyzer interface {
	Analyze(ctx context.Context, ownerID, trackerID uuid.UUID, asOf time.Time) (*insights.Summary, error)
}

// Processor dispatches queue jobs to the engines
type Processor struct {
	provisioner Provisioner
	analyzer    InsightAnalyzer
	jobQueue    queue.JobQueue
	logger      *zap.Logger
	now         func() time.Time
}

// NewProcessor creates a job processor
func NewProcessor(provisioner Provisioner, analyzer InsightAnalyzer, jobQueue queue.JobQueue, logger *zap.Logger) *Processor {
	return &Processor{
		provisioner: provisioner,
		analyzer:    analyzer,
		jobQueue:    jobQueue,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source, for tests
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// HandleMessage processes one delivery and settles it: successful jobs are
// acked, failed jobs are re-enqueued with a bumped retry count until the
// budget runs out, then dead-lettered.
func (p *Processor) HandleMessage(ctx context.Context, msg queue.MessageInterface) {
	job := msg.GetJob()
	if job == nil {
		p.logger.Error("message_without_job")
		if err := msg.Nack(false); err != nil {
			p.logger.Error("nack_failed", zap.Error(err))
		}
		return
	}

	err := p.ProcessJob(ctx, job)
	if err == nil {
		if err := msg.Ack(); err != nil {
			p.logger.Error("ack_failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		}
		return
	}

	p.logger.Warn("job_failed",
		zap.Error(err),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount))

	if job.CanRetry() {
		job.IncrementRetry()
		if enqueueErr := p.jobQueue.Enqueue(ctx, job); enqueueErr != nil {
			p.logger.Error("retry_enqueue_failed",
				zap.Error(enqueueErr),
				zap.String("job_id", job.ID.String()))
			// Requeue the original delivery so the job is not lost.
			if err := msg.Nack(true); err != nil {
				p.logger.Error("nack_failed", zap.Error(err))
			}
			return
		}
		if err := msg.Ack(); err != nil {
			p.logger.Error("ack_failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		}
		return
	}

	p.logger.Error("job_exhausted_retries",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)))
	if err := msg.Nack(false); err != nil {
		p.logger.Error("nack_failed", zap.Error(err))
	}
}

// ProcessJob runs one job to completion
func (p *Processor) ProcessJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeProvisionTracker:
		return p.processProvision(ctx, job)
	case queue.JobTypeCheckAllTrackers:
		return p.processCheckAll(ctx, job)
	case queue.JobTypeRecomputeInsights:
		return p.processInsights(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) processProvision(ctx context.Context, job *queue.Job) error {
	if job.TrackerID == nil {
		return fmt.Errorf("tracker_id is required for provision job")
	}

	var (
		inst    *models.TrackerInstance
		created bool
		err     error
	)
	if job.ReferenceDate != nil {
		inst, created, err = p.provisioner.EnsureInstance(ctx, job.OwnerID, *job.TrackerID, *job.ReferenceDate)
	} else {
		inst, created, err = p.provisioner.EnsureToday(ctx, job.OwnerID, *job.TrackerID)
	}
	if err != nil {
		return fmt.Errorf("provision tracker: %w", err)
	}

	p.logger.Info("tracker_provisioned",
		zap.String("tracker_id", job.TrackerID.String()),
		zap.String("instance_id", inst.ID.String()),
		zap.Bool("created", created))
	return nil
}

func (p *Processor) processCheckAll(ctx context.Context, job *queue.Job) error {
	ref := p.now()
	if job.ReferenceDate != nil {
		ref = *job.ReferenceDate
	}

	report, err := p.provisioner.CheckAllTrackers(ctx, job.OwnerID, ref)
	if err != nil {
		return fmt.Errorf("check all trackers: %w", err)
	}

	p.logger.Info("owner_trackers_checked",
		zap.String("owner_id", job.OwnerID.String()),
		zap.Int("provisioned", report.Provisioned),
		zap.Int("existing", report.Existing),
		zap.Int("failed", len(report.Failed)))

	// Per-tracker failures never abort the batch; surfacing them here puts
	// the job on the retry path, and already-provisioned trackers are
	// no-ops on the next attempt.
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d trackers failed provisioning",
			len(report.Failed), report.Provisioned+report.Existing+len(report.Failed))
	}
	return nil
}

func (p *Processor) processInsights(ctx context.Context, job *queue.Job) error {
	if job.TrackerID == nil {
		return fmt.Errorf("tracker_id is required for insights job")
	}

	asOf := p.now()
	if job.ReferenceDate != nil {
		asOf = *job.ReferenceDate
	}

	if _, err := p.analyzer.Analyze(ctx, job.OwnerID, *job.TrackerID, asOf); err != nil {
		return fmt.Errorf("recompute insights: %w", err)
	}

	p.logger.Info("insights_recomputed",
		zap.String("tracker_id", job.TrackerID.String()))
	return nil
}
