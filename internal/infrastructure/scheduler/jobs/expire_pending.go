// Package jobs contains implementations of scheduled jobs for the training
// management system.
package jobs

import (
	"context"
	"fmt"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE PENDING JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpirePendingJob cancels pending enrollments whose expected completion
// date has passed without confirmation. Each cancellation frees a seat.
type ExpirePendingJob struct {
	handler *command.ExpirePendingHandler
	log     *logger.Logger
}

// NewExpirePendingJob creates a new ExpirePendingJob.
func NewExpirePendingJob(handler *command.ExpirePendingHandler, log *logger.Logger) *ExpirePendingJob {
	return &ExpirePendingJob{
		handler: handler,
		log:     log.With(logger.Component("expire_pending_job")),
	}
}

// Name returns the unique name of the job.
func (j *ExpirePendingJob) Name() string {
	return "expire_pending_enrollments"
}

// Description returns a human-readable description of the job.
func (j *ExpirePendingJob) Description() string {
	return "Cancels pending enrollments past their expected completion date"
}

// Run executes the job.
func (j *ExpirePendingJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.ExpirePendingCommand{})
	if err != nil {
		return fmt.Errorf("expire pending enrollments: %w", err)
	}

	if result.Scanned > 0 {
		j.log.Info("stale pending enrollments processed",
			logger.Int("scanned", result.Scanned),
			logger.Int("expired", result.Expired),
			logger.Int("failed", result.Failed),
		)
	}

	if result.Failed > 0 {
		return fmt.Errorf("expire pending enrollments: %d of %d cancellations failed", result.Failed, result.Scanned)
	}
	return nil
}
