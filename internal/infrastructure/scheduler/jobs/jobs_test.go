package jobs

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/memory"
	"github.com/Hbini/training-management-system/pkg/logger"
)

type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
}

func TestExpirePendingJob(t *testing.T) {
	log := testLogger()
	store := memory.NewStore()
	enrollments := memory.NewEnrollmentRepository(store)
	ctx := context.Background()

	overdue, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        uuid.NewString(),
		StudentID: "s-1",
		CourseID:  "c-1",
	})
	require.NoError(t, err)
	overdue.ExpectedCompletionAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, enrollments.Create(ctx, overdue))

	fresh, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        uuid.NewString(),
		StudentID: "s-2",
		CourseID:  "c-1",
	})
	require.NoError(t, err)
	require.NoError(t, enrollments.Create(ctx, fresh))

	job := NewExpirePendingJob(command.NewExpirePendingHandler(enrollments, nopPublisher{}, log), log)
	assert.Equal(t, "expire_pending_enrollments", job.Name())

	require.NoError(t, job.Run(ctx))

	expired, err := enrollments.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusWithdrawn, expired.Status)

	untouched, err := enrollments.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPending, untouched.Status)

	// A second run finds nothing due.
	require.NoError(t, job.Run(ctx))
}

// mapStatsCache is a minimal in-process query.StatsCache for job tests.
type mapStatsCache struct {
	mu      sync.Mutex
	entries map[string]*query.CourseStatsDTO
}

func newMapStatsCache() *mapStatsCache {
	return &mapStatsCache{entries: make(map[string]*query.CourseStatsDTO)}
}

func (c *mapStatsCache) Get(_ context.Context, courseID string) (*query.CourseStatsDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[courseID]
	return stats, ok
}

func (c *mapStatsCache) Set(_ context.Context, stats *query.CourseStatsDTO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[stats.CourseID] = stats
}

func TestWarmStatsJob(t *testing.T) {
	log := testLogger()
	store := memory.NewStore()
	courses := memory.NewCourseRepository(store)
	enrollments := memory.NewEnrollmentRepository(store)
	ctx := context.Background()

	active, err := course.NewCourse(course.NewCourseParams{
		ID:            uuid.NewString(),
		Title:         "Go",
		DurationHours: 40,
		Instructor:    "Ana",
		MaxSeats:      10,
	})
	require.NoError(t, err)
	require.NoError(t, courses.Create(ctx, active))

	inactive, err := course.NewCourse(course.NewCourseParams{
		ID:            uuid.NewString(),
		Title:         "Retired",
		DurationHours: 40,
		Instructor:    "Ana",
		MaxSeats:      10,
	})
	require.NoError(t, err)
	inactive.Deactivate()
	require.NoError(t, courses.Create(ctx, inactive))

	cache := newMapStatsCache()
	handler := query.NewGetCourseStatsHandler(courses, enrollments, cache, log)
	job := NewWarmStatsJob(courses, handler, log)
	assert.Equal(t, "warm_course_stats", job.Name())

	require.NoError(t, job.Run(ctx))

	_, ok := cache.Get(ctx, active.ID)
	assert.True(t, ok, "active course stats are cached")
	_, ok = cache.Get(ctx, inactive.ID)
	assert.False(t, ok, "inactive courses are skipped")
}
