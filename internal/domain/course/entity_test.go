package course

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

func TestNewCourse(t *testing.T) {
	c, err := NewCourse(NewCourseParams{
		ID:            uuid.NewString(),
		Title:         "  Go Fundamentals ",
		DurationHours: 40,
		Category:      CategoryTechnology,
		Instructor:    "Ana",
		MaxSeats:      25,
		FeeCents:      150000,
	})
	require.NoError(t, err)

	assert.Equal(t, "Go Fundamentals", c.Title)
	assert.Equal(t, 25, c.MaxSeats)
	assert.Equal(t, shared.Money(150000), c.Fee)
	assert.True(t, c.IsActive)
}

func TestNewCourse_Defaults(t *testing.T) {
	c, err := NewCourse(NewCourseParams{
		ID:            uuid.NewString(),
		Title:         "Untitled",
		DurationHours: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryOther, c.Category)
	assert.Equal(t, DefaultMaxSeats, c.MaxSeats)
	assert.Equal(t, shared.Money(0), c.Fee)
}

func TestNewCourse_Validation(t *testing.T) {
	valid := func() NewCourseParams {
		return NewCourseParams{
			ID:            uuid.NewString(),
			Title:         "T",
			DurationHours: 10,
		}
	}

	p := valid()
	p.ID = "bad"
	_, err := NewCourse(p)
	assert.Error(t, err)

	p = valid()
	p.Title = "   "
	_, err = NewCourse(p)
	assert.Error(t, err)

	p = valid()
	p.DurationHours = 0
	_, err = NewCourse(p)
	assert.ErrorIs(t, err, shared.ErrInvalidDuration)

	p = valid()
	p.Category = "cooking"
	_, err = NewCourse(p)
	assert.Error(t, err)

	p = valid()
	p.MaxSeats = -1
	_, err = NewCourse(p)
	assert.ErrorIs(t, err, shared.ErrInvalidSeatCount)

	p = valid()
	p.FeeCents = -100
	_, err = NewCourse(p)
	assert.ErrorIs(t, err, shared.ErrInvalidFee)
}

func TestDeactivate(t *testing.T) {
	c, err := NewCourse(NewCourseParams{
		ID:            uuid.NewString(),
		Title:         "T",
		DurationHours: 10,
	})
	require.NoError(t, err)

	c.Deactivate()
	assert.False(t, c.IsActive)
}

func TestCapacitySnapshot(t *testing.T) {
	s := NewCapacitySnapshot(uuid.NewString(), 10, 7)
	assert.True(t, s.HasSeat())
	assert.Equal(t, 3, s.AvailableSeats())
	assert.InDelta(t, 0.7, s.Utilization(), 1e-9)

	full := NewCapacitySnapshot(uuid.NewString(), 10, 10)
	assert.False(t, full.HasSeat())
	assert.Equal(t, 0, full.AvailableSeats())

	empty := NewCapacitySnapshot(uuid.NewString(), 0, 0)
	assert.Zero(t, empty.Utilization())
}
