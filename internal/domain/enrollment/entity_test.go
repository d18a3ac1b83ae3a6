package enrollment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

func newTestEnrollment(t *testing.T) *Enrollment {
	t.Helper()
	enr, err := NewEnrollment(NewEnrollmentParams{
		ID:        uuid.NewString(),
		StudentID: uuid.NewString(),
		CourseID:  uuid.NewString(),
	})
	require.NoError(t, err)
	return enr
}

func newActiveEnrollment(t *testing.T) *Enrollment {
	t.Helper()
	enr := newTestEnrollment(t)
	require.NoError(t, enr.Confirm())
	return enr
}

func TestNewEnrollment(t *testing.T) {
	enr := newTestEnrollment(t)

	assert.Equal(t, StatusPending, enr.Status)
	assert.Equal(t, shared.MinProgress, enr.Progress)
	assert.Nil(t, enr.CompletedAt)
	assert.Empty(t, enr.Attendance)
	assert.Empty(t, enr.Grades)
	assert.Equal(t, enr.EnrolledAt.Add(DefaultCompletionWindow), enr.ExpectedCompletionAt)
}

func TestNewEnrollment_CustomWindow(t *testing.T) {
	enr, err := NewEnrollment(NewEnrollmentParams{
		ID:               uuid.NewString(),
		StudentID:        uuid.NewString(),
		CourseID:         uuid.NewString(),
		CompletionWindow: 30 * 24 * time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, enr.EnrolledAt.Add(30*24*time.Hour), enr.ExpectedCompletionAt)
}

func TestNewEnrollment_Validation(t *testing.T) {
	_, err := NewEnrollment(NewEnrollmentParams{ID: "not-a-uuid", StudentID: "s", CourseID: "c"})
	assert.Error(t, err)

	_, err = NewEnrollment(NewEnrollmentParams{ID: uuid.NewString(), StudentID: "", CourseID: "c"})
	assert.Error(t, err)

	_, err = NewEnrollment(NewEnrollmentParams{ID: uuid.NewString(), StudentID: "s", CourseID: "  "})
	assert.Error(t, err)
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(e *Enrollment)
		apply   func(e *Enrollment) error
		want    Status
		wantErr error
	}{
		{
			name:  "pending confirm",
			apply: func(e *Enrollment) error { return e.Confirm() },
			want:  StatusActive,
		},
		{
			name:  "pending cancel",
			apply: func(e *Enrollment) error { return e.Cancel() },
			want:  StatusWithdrawn,
		},
		{
			name:    "pending withdraw rejected",
			apply:   func(e *Enrollment) error { return e.Withdraw() },
			wantErr: shared.ErrInvalidTransition,
		},
		{
			name:    "pending fail rejected",
			apply:   func(e *Enrollment) error { return e.Fail() },
			wantErr: shared.ErrInvalidTransition,
		},
		{
			name:    "pending complete rejected",
			apply:   func(e *Enrollment) error { return e.Complete() },
			wantErr: shared.ErrInvalidTransition,
		},
		{
			name:    "active confirm rejected",
			prepare: func(e *Enrollment) { _ = e.Confirm() },
			apply:   func(e *Enrollment) error { return e.Confirm() },
			wantErr: shared.ErrInvalidTransition,
		},
		{
			name:    "active withdraw",
			prepare: func(e *Enrollment) { _ = e.Confirm() },
			apply:   func(e *Enrollment) error { return e.Withdraw() },
			want:    StatusWithdrawn,
		},
		{
			name:    "active fail",
			prepare: func(e *Enrollment) { _ = e.Confirm() },
			apply:   func(e *Enrollment) error { return e.Fail() },
			want:    StatusFailed,
		},
		{
			name: "withdrawn is terminal",
			prepare: func(e *Enrollment) {
				_ = e.Cancel()
			},
			apply:   func(e *Enrollment) error { return e.Confirm() },
			wantErr: shared.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enr := newTestEnrollment(t)
			if tt.prepare != nil {
				tt.prepare(enr)
			}
			err := tt.apply(enr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, enr.Status)
		})
	}
}

func TestComplete(t *testing.T) {
	enr := newActiveEnrollment(t)

	// Completion requires full progress.
	err := enr.Complete()
	assert.ErrorIs(t, err, shared.ErrIncompleteProgress)
	assert.Nil(t, enr.CompletedAt)

	_, err = enr.UpdateProgress(100)
	require.NoError(t, err)

	require.NoError(t, enr.Complete())
	assert.Equal(t, StatusCompleted, enr.Status)
	require.NotNil(t, enr.CompletedAt)

	// CompletedAt is set exactly once.
	completedAt := *enr.CompletedAt
	assert.ErrorIs(t, enr.Complete(), shared.ErrInvalidTransition)
	assert.Equal(t, completedAt, *enr.CompletedAt)
}

func TestUpdateProgress(t *testing.T) {
	enr := newActiveEnrollment(t)

	previous, err := enr.UpdateProgress(40)
	require.NoError(t, err)
	assert.Equal(t, shared.Progress(0), previous)
	assert.Equal(t, shared.Progress(40), enr.Progress)

	// Same value is allowed, regress is not.
	_, err = enr.UpdateProgress(40)
	assert.NoError(t, err)

	_, err = enr.UpdateProgress(39)
	assert.ErrorIs(t, err, shared.ErrInvalidProgress)
	assert.Equal(t, shared.Progress(40), enr.Progress)

	_, err = enr.UpdateProgress(101)
	assert.ErrorIs(t, err, shared.ErrInvalidProgress)

	_, err = enr.UpdateProgress(-1)
	assert.ErrorIs(t, err, shared.ErrInvalidProgress)
}

func TestUpdateProgress_RequiresActive(t *testing.T) {
	enr := newTestEnrollment(t)
	_, err := enr.UpdateProgress(10)
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)
}

func TestRecordAttendance(t *testing.T) {
	enr := newActiveEnrollment(t)
	day := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	require.NoError(t, enr.RecordAttendance(day, true))
	require.Len(t, enr.Attendance, 1)
	assert.Equal(t, NormalizeClassDate(day), enr.Attendance[0].ClassDate)

	// One record per calendar date, regardless of time of day.
	err := enr.RecordAttendance(day.Add(3*time.Hour), false)
	assert.ErrorIs(t, err, shared.ErrDuplicateAttendance)
	assert.Len(t, enr.Attendance, 1)

	require.NoError(t, enr.RecordAttendance(day.AddDate(0, 0, 1), false))
	assert.Len(t, enr.Attendance, 2)
	assert.InDelta(t, 0.5, enr.AttendanceRate(), 1e-9)
}

func TestRecordAttendance_RequiresActive(t *testing.T) {
	enr := newTestEnrollment(t)
	err := enr.RecordAttendance(time.Now(), true)
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)
}

func TestRecordGrade(t *testing.T) {
	enr := newActiveEnrollment(t)

	require.NoError(t, enr.RecordGrade("midterm", 80))
	assert.InDelta(t, 80.0, enr.AverageGrade, 1e-9)

	require.NoError(t, enr.RecordGrade("final", 90))
	assert.InDelta(t, 85.0, enr.AverageGrade, 1e-9)

	// Retakes of the same assessment are separate records.
	require.NoError(t, enr.RecordGrade("final", 100))
	assert.InDelta(t, 90.0, enr.AverageGrade, 1e-9)
	assert.Len(t, enr.Grades, 3)

	assert.Error(t, enr.RecordGrade("", 50))
	assert.ErrorIs(t, enr.RecordGrade("quiz", 101), shared.ErrInvalidScore)
	assert.ErrorIs(t, enr.RecordGrade("quiz", -0.5), shared.ErrInvalidScore)
}

func TestAttendanceRate_Empty(t *testing.T) {
	enr := newTestEnrollment(t)
	assert.Zero(t, enr.AttendanceRate())
}

func TestIsOverdue(t *testing.T) {
	enr := newTestEnrollment(t)

	assert.False(t, enr.IsOverdue(enr.ExpectedCompletionAt))
	assert.True(t, enr.IsOverdue(enr.ExpectedCompletionAt.Add(time.Second)))

	// Only pending enrollments expire.
	require.NoError(t, enr.Confirm())
	assert.False(t, enr.IsOverdue(enr.ExpectedCompletionAt.Add(time.Hour)))
}

func TestStatusProperties(t *testing.T) {
	assert.True(t, StatusPending.OccupiesSeat())
	assert.True(t, StatusActive.OccupiesSeat())
	assert.False(t, StatusCompleted.OccupiesSeat())
	assert.False(t, StatusWithdrawn.OccupiesSeat())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusWithdrawn.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestNormalizeClassDate(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	local := time.Date(2026, 5, 2, 23, 15, 0, 0, loc)
	normalized := NormalizeClassDate(local)

	assert.Equal(t, time.UTC, normalized.Location())
	assert.Equal(t, 0, normalized.Hour())
	assert.Equal(t, 0, normalized.Minute())
}
