package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
)

func TestEnrollStudent(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)

	result, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	require.NoError(t, err)

	assert.Equal(t, enrollment.StatusPending, result.Status)
	assert.Equal(t, 9, result.SeatsRemaining)
	assert.Equal(t, result.EnrolledAt.Add(enrollment.DefaultCompletionWindow), result.ExpectedCompletionAt)
}

func TestEnrollStudent_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{CourseID: "c"})
	assert.Error(t, err)

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{StudentID: "s"})
	assert.Error(t, err)

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID:        "s",
		CourseID:         "c",
		CompletionWindow: -1,
	})
	assert.Error(t, err)
}

func TestEnrollStudent_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)

	_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: "00000000-0000-0000-0000-000000000000",
		CourseID:  courseID,
	})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, shared.ErrCourseNotFound)
}

func TestEnrollStudent_CapacityGate(t *testing.T) {
	f := newFixture(t)
	courseID := f.newCourse(t, "Tiny", 1)
	first := f.newStudent(t, "first@example.com")
	second := f.newStudent(t, "second@example.com")

	result, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: first,
		CourseID:  courseID,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SeatsRemaining)

	// The pending reservation already holds the last seat.
	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: second,
		CourseID:  courseID,
	})
	assert.ErrorIs(t, err, shared.ErrCapacityExceeded)

	// Cancelling frees the seat.
	_, err = f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: result.EnrollmentID,
		Action:       ActionCancel,
	})
	require.NoError(t, err)

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: second,
		CourseID:  courseID,
	})
	assert.NoError(t, err)
}

func TestEnrollStudent_DuplicatePair(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)

	f.newEnrollment(t, studentID, courseID)

	_, err := f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	assert.ErrorIs(t, err, shared.ErrDuplicateEnrollment)
}

func TestEnrollStudent_ReEnrollAfterTerminal(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)

	id := f.newActiveEnrollment(t, studentID, courseID)
	_, err := f.transition.Handle(context.Background(), TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       ActionWithdraw,
	})
	require.NoError(t, err)

	// A terminal enrollment no longer blocks the pair.
	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	assert.NoError(t, err)
}

func TestEnrollStudent_InactiveParties(t *testing.T) {
	f := newFixture(t)
	studentID := f.newStudent(t, "a@example.com")
	courseID := f.newCourse(t, "Golang", 10)

	s, err := f.students.GetByID(context.Background(), studentID)
	require.NoError(t, err)
	s.Deactivate()
	require.NoError(t, f.students.Update(context.Background(), s))

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: studentID,
		CourseID:  courseID,
	})
	assert.ErrorIs(t, err, shared.ErrStudentNotActive)

	other := f.newStudent(t, "b@example.com")
	c, err := f.courses.GetByID(context.Background(), courseID)
	require.NoError(t, err)
	c.Deactivate()
	require.NoError(t, f.courses.Update(context.Background(), c))

	_, err = f.enroll.Handle(context.Background(), EnrollStudentCommand{
		StudentID: other,
		CourseID:  courseID,
	})
	assert.ErrorIs(t, err, shared.ErrCourseInactive)
}
