// Package timeutil provides time helpers for the training management
// system. Attendance and reporting operate on calendar dates in the
// institution's local timezone (America/Sao_Paulo), while all stored
// timestamps are UTC.
package timeutil

import (
	"time"
)

// Location is the institution's timezone.
// A fixed offset is used as a fallback if the tzdata is unavailable.
var Location *time.Location

func init() {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	Location = loc
}

// Now returns the current time in the institution's timezone.
func Now() time.Time {
	return time.Now().In(Location)
}

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Today returns midnight of the current calendar date in UTC.
// The calendar date is taken in the institution's timezone, so a class
// held at 22:00 local time still lands on the local date.
func Today() time.Time {
	return DateOf(Now())
}

// DateOf truncates t to its calendar date (midnight UTC).
// The date components are read in the institution's timezone.
func DateOf(t time.Time) time.Time {
	local := t.In(Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// StartOfDay returns midnight of t's date in the institution's timezone.
func StartOfDay(t time.Time) time.Time {
	local := t.In(Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Location)
}

// EndOfDay returns the last nanosecond of t's date in the institution's timezone.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// StartOfWeek returns midnight Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	local := t.In(Location)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday - 1)))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	local := t.In(Location)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, Location)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	da := DateOf(a)
	db := DateOf(b)
	return int(db.Sub(da).Hours() / 24)
}

// FormatDate formats t as a calendar date (YYYY-MM-DD) in the
// institution's timezone.
func FormatDate(t time.Time) string {
	return t.In(Location).Format("2006-01-02")
}

// FormatDateTime formats t for human-facing output in the
// institution's timezone.
func FormatDateTime(t time.Time) string {
	return t.In(Location).Format("2006-01-02 15:04:05")
}

// ParseDate parses a YYYY-MM-DD string as a calendar date in the
// institution's timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, Location)
}

// IsPast reports whether t is strictly before now.
func IsPast(t time.Time) bool {
	return t.Before(time.Now())
}

// IsFutureDate reports whether t's calendar date is after today's.
func IsFutureDate(t time.Time) bool {
	return DateOf(t).After(Today())
}
