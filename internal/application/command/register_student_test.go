package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
)

func TestRegisterStudent(t *testing.T) {
	f := newFixture(t)

	result, err := f.register.Handle(context.Background(), RegisterStudentCommand{
		Name:  "Maria Silva",
		Email: "Maria@Example.com",
		Phone: "(11) 98765-4321",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.StudentID)
	assert.Equal(t, student.StatusActive, result.Status)

	s, err := f.students.GetByID(context.Background(), result.StudentID)
	require.NoError(t, err)
	assert.Equal(t, student.Email("maria@example.com"), s.Email)
	assert.Equal(t, student.Phone("11987654321"), s.Phone)
}

func TestRegisterStudent_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.newStudent(t, "maria@example.com")

	// Email uniqueness is case-insensitive.
	_, err := f.register.Handle(context.Background(), RegisterStudentCommand{
		Name:  "Other",
		Email: "MARIA@example.com",
	})
	assert.ErrorIs(t, err, shared.ErrStudentAlreadyExists)
}

func TestRegisterStudent_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.register.Handle(context.Background(), RegisterStudentCommand{Email: "a@b.com"})
	assert.Error(t, err)

	_, err = f.register.Handle(context.Background(), RegisterStudentCommand{Name: "A"})
	assert.Error(t, err)

	_, err = f.register.Handle(context.Background(), RegisterStudentCommand{
		Name:  "A",
		Email: "not-an-email",
	})
	assert.Error(t, err)
}

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)

	result, err := f.course.Handle(context.Background(), CreateCourseCommand{
		Title:         "Go Fundamentals",
		DurationHours: 40,
		Category:      "technology",
		Instructor:    "Ana",
		MaxSeats:      25,
		FeeCents:      99900,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, result.MaxSeats)

	c, err := f.courses.GetByID(context.Background(), result.CourseID)
	require.NoError(t, err)
	assert.Equal(t, "Go Fundamentals", c.Title)
	assert.Equal(t, shared.Money(99900), c.Fee)
	assert.True(t, c.IsActive)
}

func TestCreateCourse_DuplicateTitle(t *testing.T) {
	f := newFixture(t)
	f.newCourse(t, "Go Fundamentals", 10)

	_, err := f.course.Handle(context.Background(), CreateCourseCommand{
		Title:         "go fundamentals",
		DurationHours: 20,
		Category:      "technology",
		Instructor:    "Ana",
	})
	assert.ErrorIs(t, err, shared.ErrCourseAlreadyExists)
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.course.Handle(context.Background(), CreateCourseCommand{DurationHours: 10})
	assert.Error(t, err)

	_, err = f.course.Handle(context.Background(), CreateCourseCommand{Title: "T"})
	assert.Error(t, err)

	_, err = f.course.Handle(context.Background(), CreateCourseCommand{
		Title:         "T",
		DurationHours: 10,
		Category:      "cooking",
	})
	assert.Error(t, err)
}
