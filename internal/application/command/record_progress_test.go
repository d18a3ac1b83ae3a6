package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

func TestRecordAttendance(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newActiveEnrollment(t, studentID, courseID)

	day := time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC)

	result, err := f.attendance.Handle(context.Background(), RecordAttendanceCommand{
		EnrollmentID: id,
		ClassDate:    day,
		Present:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRecords)
	assert.InDelta(t, 1.0, result.AttendanceRate, 1e-9)

	// Second mark on the same calendar date is rejected.
	_, err = f.attendance.Handle(context.Background(), RecordAttendanceCommand{
		EnrollmentID: id,
		ClassDate:    day.Add(5 * time.Hour),
		Present:      false,
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateAttendance)

	result, err = f.attendance.Handle(context.Background(), RecordAttendanceCommand{
		EnrollmentID: id,
		ClassDate:    day.AddDate(0, 0, 1),
		Present:      false,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRecords)
	assert.InDelta(t, 0.5, result.AttendanceRate, 1e-9)
}

func TestRecordAttendance_RequiresActive(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newEnrollment(t, studentID, courseID)

	_, err := f.attendance.Handle(context.Background(), RecordAttendanceCommand{
		EnrollmentID: id,
		ClassDate:    time.Now(),
		Present:      true,
	})
	assert.ErrorIs(t, err, shared.ErrEnrollmentNotActive)
}

func TestRecordGrade(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newActiveEnrollment(t, studentID, courseID)

	result, err := f.grade.Handle(context.Background(), RecordGradeCommand{
		EnrollmentID: id,
		Assessment:   "midterm",
		Score:        70,
	})
	require.NoError(t, err)
	assert.InDelta(t, 70.0, result.AverageGrade, 1e-9)

	result, err = f.grade.Handle(context.Background(), RecordGradeCommand{
		EnrollmentID: id,
		Assessment:   "final",
		Score:        90,
	})
	require.NoError(t, err)
	assert.InDelta(t, 80.0, result.AverageGrade, 1e-9)
	assert.Equal(t, 2, result.TotalGrades)

	_, err = f.grade.Handle(context.Background(), RecordGradeCommand{
		EnrollmentID: id,
		Assessment:   "quiz",
		Score:        120,
	})
	assert.Error(t, err)
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newActiveEnrollment(t, studentID, courseID)

	result, err := f.progress.Handle(context.Background(), UpdateProgressCommand{
		EnrollmentID: id,
		NewPercent:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.PreviousPercent)
	assert.Equal(t, 60, result.NewPercent)
	assert.False(t, result.AutoCompleted)

	_, err = f.progress.Handle(context.Background(), UpdateProgressCommand{
		EnrollmentID: id,
		NewPercent:   50,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidProgress)
}

func TestUpdateProgress_AutoComplete(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newActiveEnrollment(t, studentID, courseID)

	autoProgress := NewUpdateProgressHandler(
		f.enrollments, f.store, nopPublisher{},
		logger.Default().WithLevel(logger.LevelError),
		true, f.complete,
	)

	result, err := autoProgress.Handle(context.Background(), UpdateProgressCommand{
		EnrollmentID: id,
		NewPercent:   100,
	})
	require.NoError(t, err)
	assert.True(t, result.AutoCompleted)

	enr, err := f.enrollments.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusCompleted, enr.Status)

	_, err = f.certificates.GetByEnrollment(context.Background(), id)
	assert.NoError(t, err)
}

func TestTransitionEnrollment(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)
	id := f.newEnrollment(t, studentID, courseID)

	result, err := f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       ActionConfirm,
	})
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPending, result.FromStatus)
	assert.Equal(t, enrollment.StatusActive, result.ToStatus)

	// Cancel only applies to pending enrollments.
	_, err = f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       ActionCancel,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	result, err = f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       ActionFail,
	})
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusFailed, result.ToStatus)
}

func TestTransitionEnrollment_UnknownAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: "00000000-0000-0000-0000-000000000000",
		Action:       "promote",
	})
	assert.Error(t, err)
}

func TestExpirePending(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)

	overdueStudent := f.newStudent(t, "overdue@example.com")
	activeStudent := f.newStudent(t, "active@example.com")
	freshStudent := f.newStudent(t, "fresh@example.com")

	overdueID := f.newEnrollment(t, overdueStudent, courseID)
	f.newActiveEnrollment(t, activeStudent, courseID)
	f.newEnrollment(t, freshStudent, courseID)

	// Only pending enrollments past their deadline are withdrawn.
	result, err := f.expire.Handle(context.Background(), ExpirePendingCommand{
		Before: time.Now().UTC().Add(enrollment.DefaultCompletionWindow + time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Expired)
	assert.Zero(t, result.Failed)

	enr, err := f.enrollments.GetByID(context.Background(), overdueID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusWithdrawn, enr.Status)
}

func TestExpirePending_NothingDue(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Golang", 10)
	studentID := f.newStudent(t, "a@example.com")
	f.newEnrollment(t, studentID, courseID)

	result, err := f.expire.Handle(context.Background(), ExpirePendingCommand{})
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Zero(t, result.Expired)
}
