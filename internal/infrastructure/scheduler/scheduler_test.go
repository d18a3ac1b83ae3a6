package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/pkg/logger"
)

// Both schedule constructors must hand out values usable wherever a
// Schedule is accepted; Next and String have pointer receivers.
var (
	_ Schedule = NewIntervalSchedule(time.Hour)
	_ Schedule = NewDailySchedule(3, 30)
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "test job" }

func (j *fakeJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	return NewScheduler(log, time.UTC)
}

func TestRegister(t *testing.T) {
	s := newTestScheduler()
	schedule := NewIntervalSchedule(time.Hour)

	require.NoError(t, s.Register(&fakeJob{name: "a"}, schedule))

	assert.ErrorIs(t, s.Register(&fakeJob{name: "a"}, schedule), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, schedule), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "b"}, nil), ErrNilSchedule)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "@every 1h0m0s", jobs[0].Schedule)
	assert.True(t, jobs[0].Enabled)
	assert.False(t, jobs[0].NextRun.IsZero())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestStop_AfterContextCancel(t *testing.T) {
	s := newTestScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	// Stop still works after the parent context is gone.
	assert.NoError(t, s.Stop())
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "expire"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "expire")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, job.runs)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunNow_RecordsFailure(t *testing.T) {
	s := newTestScheduler()
	boom := errors.New("boom")
	require.NoError(t, s.Register(&fakeJob{name: "broken", err: boom}, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "broken")
	assert.ErrorIs(t, err, boom)
	assert.False(t, result.Success)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].LastResult)
	assert.ErrorIs(t, jobs[0].LastResult.Error, boom)
}

func TestDisableJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.Register(&fakeJob{name: "a"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.DisableJob("a"))
	assert.False(t, s.ListJobs()[0].Enabled)

	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}

func TestIntervalSchedule_Next(t *testing.T) {
	schedule := NewIntervalSchedule(15 * time.Minute)
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(15*time.Minute), schedule.Next(now))
	assert.Equal(t, "@every 15m0s", schedule.String())
}

func TestDailySchedule_Next(t *testing.T) {
	schedule := NewDailySchedule(3, 30)

	// Before today's firing time: fires today.
	before := time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC)
	next := schedule.Next(before)
	assert.Equal(t, time.Date(2026, 3, 9, 3, 30, 0, 0, time.UTC), next)

	// At or after the firing time: fires tomorrow.
	after := time.Date(2026, 3, 9, 3, 30, 0, 0, time.UTC)
	next = schedule.Next(after)
	assert.Equal(t, time.Date(2026, 3, 10, 3, 30, 0, 0, time.UTC), next)

	assert.Equal(t, "@daily 03:30", schedule.String())
}
