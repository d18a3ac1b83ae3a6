// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidID checks that an identifier is a well-formed UUID string.
// Entity IDs are opaque UUID strings assigned at creation and never changed.
func IsValidID(id string) bool {
	return uuidRegex.MatchString(id)
}

// NormalizeID lowercases and trims an identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Progress represents course completion percentage for an enrollment.
// It is an integer in [0,100] and monotonically non-decreasing while the
// enrollment is active.
type Progress int

const (
	MinProgress  Progress = 0
	FullProgress Progress = 100
)

// IsValid checks if the progress value is within valid range.
func (p Progress) IsValid() bool {
	return p >= MinProgress && p <= FullProgress
}

// IsComplete reports whether the progress has reached 100%.
func (p Progress) IsComplete() bool {
	return p == FullProgress
}

// Int returns the underlying int value.
func (p Progress) Int() int {
	return int(p)
}

// String returns the percentage representation, e.g. "75%".
func (p Progress) String() string {
	return fmt.Sprintf("%d%%", int(p))
}

// NewProgress creates a new Progress value with validation.
func NewProgress(percent int) (Progress, error) {
	p := Progress(percent)
	if !p.IsValid() {
		return 0, NewDomainError("shared", "NewProgress", ErrValueOutOfRange, "progress must be within 0-100")
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Object (assessment grades)
// ═══════════════════════════════════════════════════════════════════════════

// Score represents an assessment score on the 0-100 scale.
type Score float64

const (
	MinScore Score = 0
	MaxScore Score = 100
)

// IsValid checks if the score is within valid range.
func (s Score) IsValid() bool {
	return s >= MinScore && s <= MaxScore
}

// Float64 returns the underlying float64 value.
func (s Score) Float64() float64 {
	return float64(s)
}

// NewScore creates a new Score with validation.
func NewScore(value float64) (Score, error) {
	s := Score(value)
	if !s.IsValid() {
		return 0, NewDomainError("shared", "NewScore", ErrValueOutOfRange, "score must be within 0-100")
	}
	return s, nil
}

// AverageScore calculates the unweighted arithmetic mean of scores.
// Insertion order is irrelevant to the result. Returns 0 for an empty slice.
func AverageScore(scores []Score) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += float64(s)
	}
	return sum / float64(len(scores))
}

// ═══════════════════════════════════════════════════════════════════════════
// Money Value Object (course fees)
// ═══════════════════════════════════════════════════════════════════════════

// Money represents a monetary amount in cents. The system only records fee
// amounts; it never processes payments.
type Money int64

// IsValid checks that the amount is non-negative.
func (m Money) IsValid() bool {
	return m >= 0
}

// Cents returns the underlying amount in cents.
func (m Money) Cents() int64 {
	return int64(m)
}

// String returns a decimal representation, e.g. "149.90".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m/100, m%100)
}

// NewMoney creates a Money value from cents with validation.
func NewMoney(cents int64) (Money, error) {
	m := Money(cents)
	if !m.IsValid() {
		return 0, NewDomainError("shared", "NewMoney", ErrNegativeValue, "amount cannot be negative")
	}
	return m, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Actor Value Object (audit attribution)
// ═══════════════════════════════════════════════════════════════════════════

// Actor identifies who triggered an operation, for audit events.
type Actor string

const (
	// ActorSystem marks transitions driven by background jobs.
	ActorSystem Actor = "system"
)

// String returns the string representation.
func (a Actor) String() string {
	return string(a)
}

// OrSystem returns the actor, defaulting to ActorSystem when empty.
func (a Actor) OrSystem() Actor {
	if strings.TrimSpace(string(a)) == "" {
		return ActorSystem
	}
	return a
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
