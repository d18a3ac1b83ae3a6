package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	// 01:30 UTC is still the previous calendar day in Sao Paulo (UTC-3).
	late := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	d := DateOf(late)

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), d)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2026, 3, 9, 10, 0, 0, 0, Location)
	b := time.Date(2026, 3, 9, 23, 59, 0, 0, Location)
	c := time.Date(2026, 3, 10, 0, 1, 0, 0, Location)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(b, c))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 9, 23, 0, 0, 0, Location)
	b := time.Date(2026, 3, 12, 1, 0, 0, 0, Location)

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestStartOfWeek(t *testing.T) {
	// 2026-03-11 is a Wednesday; the week starts Monday 2026-03-09.
	wed := time.Date(2026, 3, 11, 15, 0, 0, 0, Location)
	monday := StartOfWeek(wed)

	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 9, monday.Day())

	// Sunday belongs to the week that started six days earlier.
	sun := time.Date(2026, 3, 15, 10, 0, 0, 0, Location)
	assert.Equal(t, monday.Day(), StartOfWeek(sun).Day())
}

func TestEndOfDay(t *testing.T) {
	noon := time.Date(2026, 3, 9, 12, 0, 0, 0, Location)
	end := EndOfDay(noon)

	assert.Equal(t, 9, end.In(Location).Day())
	assert.Equal(t, 23, end.In(Location).Hour())
	assert.True(t, end.After(noon))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", FormatDate(d))

	_, err = ParseDate("09/03/2026")
	assert.Error(t, err)
}

func TestIsFutureDate(t *testing.T) {
	assert.True(t, IsFutureDate(Now().AddDate(0, 0, 1)))
	assert.False(t, IsFutureDate(Now()))
	assert.False(t, IsFutureDate(Now().AddDate(0, 0, -1)))
}
