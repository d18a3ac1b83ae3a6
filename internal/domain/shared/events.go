// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Every state change in the system emits one of these to
// the audit channel; the core is indifferent to how they are persisted.
const (
	// Enrollment lifecycle events
	EventEnrollmentCreated      EventType = "enrollment.created"
	EventEnrollmentTransitioned EventType = "enrollment.transitioned"
	EventEnrollmentExpired      EventType = "enrollment.expired"

	// Progress tracking events
	EventProgressUpdated    EventType = "progress.updated"
	EventAttendanceRecorded EventType = "progress.attendance_recorded"
	EventGradeRecorded      EventType = "progress.grade_recorded"

	// Certificate events
	EventCertificateIssued EventType = "certificate.issued"

	// Registry events
	EventStudentRegistered EventType = "student.registered"
	EventCourseCreated     EventType = "course.created"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Enrollment Events
// ═══════════════════════════════════════════════════════════════════════════

// EnrollmentCreatedEvent is emitted when a new enrollment is created.
type EnrollmentCreatedEvent struct {
	BaseEvent
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	Actor        string `json:"actor"`
}

// Payload implements Event interface.
func (e EnrollmentCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"student_id":    e.StudentID,
		"course_id":     e.CourseID,
		"actor":         e.Actor,
	}
}

// NewEnrollmentCreatedEvent creates a new EnrollmentCreatedEvent.
func NewEnrollmentCreatedEvent(enrollmentID, studentID, courseID string, actor Actor) EnrollmentCreatedEvent {
	return EnrollmentCreatedEvent{
		BaseEvent:    NewBaseEvent(EventEnrollmentCreated, enrollmentID),
		EnrollmentID: enrollmentID,
		StudentID:    studentID,
		CourseID:     courseID,
		Actor:        actor.OrSystem().String(),
	}
}

// EnrollmentTransitionedEvent is emitted on every lifecycle transition.
type EnrollmentTransitionedEvent struct {
	BaseEvent
	EnrollmentID string `json:"enrollment_id"`
	FromStatus   string `json:"from_status"`
	ToStatus     string `json:"to_status"`
	Actor        string `json:"actor"`
}

// Payload implements Event interface.
func (e EnrollmentTransitionedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"from_status":   e.FromStatus,
		"to_status":     e.ToStatus,
		"actor":         e.Actor,
	}
}

// NewEnrollmentTransitionedEvent creates a new EnrollmentTransitionedEvent.
func NewEnrollmentTransitionedEvent(enrollmentID, fromStatus, toStatus string, actor Actor) EnrollmentTransitionedEvent {
	return EnrollmentTransitionedEvent{
		BaseEvent:    NewBaseEvent(EventEnrollmentTransitioned, enrollmentID),
		EnrollmentID: enrollmentID,
		FromStatus:   fromStatus,
		ToStatus:     toStatus,
		Actor:        actor.OrSystem().String(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressUpdatedEvent is emitted when enrollment progress changes.
type ProgressUpdatedEvent struct {
	BaseEvent
	EnrollmentID    string `json:"enrollment_id"`
	PreviousPercent int    `json:"previous_percent"`
	NewPercent      int    `json:"new_percent"`
	Actor           string `json:"actor"`
}

// Payload implements Event interface.
func (e ProgressUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id":    e.EnrollmentID,
		"previous_percent": e.PreviousPercent,
		"new_percent":      e.NewPercent,
		"actor":            e.Actor,
	}
}

// NewProgressUpdatedEvent creates a new ProgressUpdatedEvent.
func NewProgressUpdatedEvent(enrollmentID string, previous, current Progress, actor Actor) ProgressUpdatedEvent {
	return ProgressUpdatedEvent{
		BaseEvent:       NewBaseEvent(EventProgressUpdated, enrollmentID),
		EnrollmentID:    enrollmentID,
		PreviousPercent: previous.Int(),
		NewPercent:      current.Int(),
		Actor:           actor.OrSystem().String(),
	}
}

// AttendanceRecordedEvent is emitted when attendance is recorded.
type AttendanceRecordedEvent struct {
	BaseEvent
	EnrollmentID string    `json:"enrollment_id"`
	ClassDate    time.Time `json:"class_date"`
	Present      bool      `json:"present"`
	Actor        string    `json:"actor"`
}

// Payload implements Event interface.
func (e AttendanceRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"class_date":    e.ClassDate.Format("2006-01-02"),
		"present":       e.Present,
		"actor":         e.Actor,
	}
}

// NewAttendanceRecordedEvent creates a new AttendanceRecordedEvent.
func NewAttendanceRecordedEvent(enrollmentID string, classDate time.Time, present bool, actor Actor) AttendanceRecordedEvent {
	return AttendanceRecordedEvent{
		BaseEvent:    NewBaseEvent(EventAttendanceRecorded, enrollmentID),
		EnrollmentID: enrollmentID,
		ClassDate:    classDate,
		Present:      present,
		Actor:        actor.OrSystem().String(),
	}
}

// GradeRecordedEvent is emitted when an assessment grade is recorded.
type GradeRecordedEvent struct {
	BaseEvent
	EnrollmentID string  `json:"enrollment_id"`
	Assessment   string  `json:"assessment"`
	ScoreValue   float64 `json:"score"`
	AverageGrade float64 `json:"average_grade"`
	Actor        string  `json:"actor"`
}

// Payload implements Event interface.
func (e GradeRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"assessment":    e.Assessment,
		"score":         e.ScoreValue,
		"average_grade": e.AverageGrade,
		"actor":         e.Actor,
	}
}

// NewGradeRecordedEvent creates a new GradeRecordedEvent.
func NewGradeRecordedEvent(enrollmentID, assessment string, score Score, average float64, actor Actor) GradeRecordedEvent {
	return GradeRecordedEvent{
		BaseEvent:    NewBaseEvent(EventGradeRecorded, enrollmentID),
		EnrollmentID: enrollmentID,
		Assessment:   assessment,
		ScoreValue:   score.Float64(),
		AverageGrade: average,
		Actor:        actor.OrSystem().String(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Certificate Events
// ═══════════════════════════════════════════════════════════════════════════

// CertificateIssuedEvent is emitted when a certificate is issued.
// The verification code itself is never placed in the audit stream.
type CertificateIssuedEvent struct {
	BaseEvent
	CertificateID     string `json:"certificate_id"`
	CertificateNumber string `json:"certificate_number"`
	EnrollmentID      string `json:"enrollment_id"`
	Actor             string `json:"actor"`
}

// Payload implements Event interface.
func (e CertificateIssuedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"certificate_id":     e.CertificateID,
		"certificate_number": e.CertificateNumber,
		"enrollment_id":      e.EnrollmentID,
		"actor":              e.Actor,
	}
}

// NewCertificateIssuedEvent creates a new CertificateIssuedEvent.
func NewCertificateIssuedEvent(certificateID, certificateNumber, enrollmentID string, actor Actor) CertificateIssuedEvent {
	return CertificateIssuedEvent{
		BaseEvent:         NewBaseEvent(EventCertificateIssued, certificateID),
		CertificateID:     certificateID,
		CertificateNumber: certificateNumber,
		EnrollmentID:      enrollmentID,
		Actor:             actor.OrSystem().String(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Registry Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student profile is registered.
type StudentRegisteredEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"name":       e.Name,
		"email":      e.Email,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, name, email string) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, studentID),
		StudentID: studentID,
		Name:      name,
		Email:     email,
	}
}

// CourseCreatedEvent is emitted when a new course is added to the catalog.
type CourseCreatedEvent struct {
	BaseEvent
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	MaxSeats int    `json:"max_seats"`
}

// Payload implements Event interface.
func (e CourseCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id": e.CourseID,
		"title":     e.Title,
		"max_seats": e.MaxSeats,
	}
}

// NewCourseCreatedEvent creates a new CourseCreatedEvent.
func NewCourseCreatedEvent(courseID, title string, maxSeats int) CourseCreatedEvent {
	return CourseCreatedEvent{
		BaseEvent: NewBaseEvent(EventCourseCreated, courseID),
		CourseID:  courseID,
		Title:     title,
		MaxSeats:  maxSeats,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID          string          `json:"id"`
	Type        EventType       `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Version     int             `json:"version"`
	Payload     json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
// The audit channel is fire-and-forget: the core never depends on the
// success of a publish.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
