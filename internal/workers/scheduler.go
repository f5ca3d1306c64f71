package workers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/14harshaldhote/trackpro/internal/queue"
)

// OwnerLister enumerates owners with active trackers
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
}

// Scheduler periodically fans out one check-all job per owner so every
// active tracker gets its current period provisioned without waiting for
// user traffic.
type Scheduler struct {
	owners   OwnerLister
	jobQueue queue.JobQueue
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a provisioning scheduler
func NewScheduler(owners OwnerLister, jobQueue queue.JobQueue, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		owners:   owners,
		jobQueue: jobQueue,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. A failed sweep is logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler_stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep enqueues one check-all job per owner. Returns the number of jobs
// enqueued.
func (s *Scheduler) sweep(ctx context.Context) int {
	owners, err := s.owners.ListOwners(ctx)
	if err != nil {
		s.logger.Error("owner_listing_failed", zap.Error(err))
		return 0
	}

	enqueued := 0
	for _, ownerID := range owners {
		job := queue.NewJob(queue.JobTypeCheckAllTrackers, ownerID, nil)
		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("sweep_enqueue_failed",
				zap.Error(err),
				zap.String("owner_id", ownerID.String()))
			continue
		}
		enqueued++
	}

	s.logger.Info("provisioning_sweep",
		zap.Int("owners", len(owners)),
		zap.Int("enqueued", enqueued))
	return enqueued
}
