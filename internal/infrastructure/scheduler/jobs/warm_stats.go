package jobs

import (
	"context"
	"fmt"

	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WARM STATS JOB
// ══════════════════════════════════════════════════════════════════════════════

// WarmStatsJob recomputes statistics for every active course and refreshes
// the cache, so interactive report requests hit warm entries.
type WarmStatsJob struct {
	courseRepo course.Repository
	handler    *query.GetCourseStatsHandler
	log        *logger.Logger
}

// NewWarmStatsJob creates a new WarmStatsJob.
func NewWarmStatsJob(courseRepo course.Repository, handler *query.GetCourseStatsHandler, log *logger.Logger) *WarmStatsJob {
	return &WarmStatsJob{
		courseRepo: courseRepo,
		handler:    handler,
		log:        log.With(logger.Component("warm_stats_job")),
	}
}

// Name returns the unique name of the job.
func (j *WarmStatsJob) Name() string {
	return "warm_course_stats"
}

// Description returns a human-readable description of the job.
func (j *WarmStatsJob) Description() string {
	return "Precomputes statistics for active courses and refreshes the cache"
}

// Run executes the job.
func (j *WarmStatsJob) Run(ctx context.Context) error {
	courses, err := j.courseRepo.GetAll(ctx, course.ListOptions{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("list active courses: %w", err)
	}

	var failed int
	for _, c := range courses {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := j.handler.Handle(ctx, query.GetCourseStatsQuery{
			CourseID:    c.ID,
			BypassCache: true,
		})
		if err != nil {
			failed++
			j.log.Warn("failed to warm course stats",
				logger.CourseID(c.ID),
				logger.Err(err),
			)
		}
	}

	j.log.Info("course stats warmed",
		logger.Int("courses", len(courses)),
		logger.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("warm course stats: %d of %d courses failed", failed, len(courses))
	}
	return nil
}
