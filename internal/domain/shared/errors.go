// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrPrecondition    = errors.New("precondition not met")
	ErrExhausted       = errors.New("retry budget exhausted")

	// Capacity errors
	ErrCapacity = errors.New("capacity limit reached")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Storage errors
	ErrTransient = errors.New("transient storage failure")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "enrollment", "certificate", "course"
	Op      string // Operation that failed, e.g., "Create", "Complete"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Enrollment domain errors.
// These are the expected business-rule outcomes of the enrollment lifecycle;
// callers match them with errors.Is(), the CLI layer translates them to text.
var (
	ErrEnrollmentNotFound    = NewDomainError("enrollment", "Find", ErrNotFound, "enrollment not found")
	ErrDuplicateEnrollment   = NewDomainError("enrollment", "Create", ErrAlreadyExists, "student already has a pending or active enrollment in this course")
	ErrCapacityExceeded      = NewDomainError("enrollment", "Reserve", ErrCapacity, "course has no available seats")
	ErrInvalidTransition     = NewDomainError("enrollment", "Transition", ErrStateTransition, "transition not allowed from current status")
	ErrIncompleteProgress    = NewDomainError("enrollment", "Complete", ErrPrecondition, "progress must reach 100% before completion")
	ErrInvalidProgress       = NewDomainError("enrollment", "UpdateProgress", ErrValueOutOfRange, "progress must be within 0-100 and may not regress")
	ErrInvalidScore          = NewDomainError("enrollment", "RecordGrade", ErrValueOutOfRange, "score must be within 0-100")
	ErrDuplicateAttendance   = NewDomainError("enrollment", "RecordAttendance", ErrAlreadyExists, "attendance already recorded for this date")
	ErrEnrollmentNotActive   = NewDomainError("enrollment", "CheckStatus", ErrInvalidState, "enrollment is not active")
	ErrEnrollmentNotMutable  = NewDomainError("enrollment", "Update", ErrInvalidState, "enrollment is in a terminal status")
	ErrEnrollmentNotComplete = NewDomainError("certificate", "Issue", ErrInvalidState, "enrollment is not completed")
)

// Certificate domain errors.
var (
	ErrCertificateNotFound     = NewDomainError("certificate", "Verify", ErrNotFound, "certificate not found")
	ErrAlreadyCertified        = NewDomainError("certificate", "Issue", ErrAlreadyExists, "certificate already issued for this enrollment")
	ErrCodeGenerationExhausted = NewDomainError("certificate", "GenerateCode", ErrExhausted, "failed to generate a unique verification code")
	ErrDuplicateCode           = NewDomainError("certificate", "Issue", ErrAlreadyExists, "verification code collision")
)

// Course domain errors.
var (
	ErrCourseNotFound      = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrCourseAlreadyExists = NewDomainError("course", "Create", ErrAlreadyExists, "course with this title already exists")
	ErrCourseInactive      = NewDomainError("course", "CheckStatus", ErrInvalidState, "course is not active")
	ErrInvalidSeatCount    = NewDomainError("course", "Validate", ErrValueOutOfRange, "max seats must be positive")
	ErrInvalidDuration     = NewDomainError("course", "Validate", ErrValueOutOfRange, "duration must be positive")
	ErrInvalidFee          = NewDomainError("course", "Validate", ErrNegativeValue, "fee amount cannot be negative")
)

// Student domain errors.
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student with this email already exists")
	ErrStudentNotActive     = NewDomainError("student", "CheckStatus", ErrInvalidState, "student profile is not active")
	ErrInvalidEmail         = NewDomainError("student", "Validate", ErrInvalidFormat, "invalid email address")
	ErrInvalidPhone         = NewDomainError("student", "Validate", ErrInvalidFormat, "invalid phone number")
	ErrInvalidCPF           = NewDomainError("student", "Validate", ErrInvalidFormat, "invalid CPF number")
)

// Storage errors surfaced by the persistence layer.
var (
	// ErrTransientFailure wraps storage/transaction timeouts. Read-only queries
	// retry it once with backoff; write operations surface it unchanged since
	// an automatic retry risks double-application.
	ErrTransientFailure = NewDomainError("storage", "Execute", ErrTransient, "transient storage failure")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsBusinessRule reports whether the error is an expected business-rule
// violation rather than an infrastructure fault.
func IsBusinessRule(err error) bool {
	return IsValidation(err) ||
		IsAlreadyExists(err) ||
		errors.Is(err, ErrCapacity) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrPrecondition) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrNotFound)
}

// IsTransient checks if the operation hit a transient storage failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
