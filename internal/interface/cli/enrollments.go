package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/interface/cli/presenter"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// EnrollmentHandler handles the enrollment and progress menu.
type EnrollmentHandler struct {
	enroll     *command.EnrollStudentHandler
	transition *command.TransitionEnrollmentHandler
	attendance *command.RecordAttendanceHandler
	grade      *command.RecordGradeHandler
	progress   *command.UpdateProgressHandler
	complete   *command.CompleteEnrollmentHandler
	list       *query.ListEnrollmentsHandler
	actor      shared.Actor
	prompt     *Prompter
	out        io.Writer
	log        *logger.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(
	enroll *command.EnrollStudentHandler,
	transition *command.TransitionEnrollmentHandler,
	attendance *command.RecordAttendanceHandler,
	grade *command.RecordGradeHandler,
	progress *command.UpdateProgressHandler,
	complete *command.CompleteEnrollmentHandler,
	list *query.ListEnrollmentsHandler,
	actor shared.Actor,
	prompt *Prompter,
	out io.Writer,
	log *logger.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enroll:     enroll,
		transition: transition,
		attendance: attendance,
		grade:      grade,
		progress:   progress,
		complete:   complete,
		list:       list,
		actor:      actor,
		prompt:     prompt,
		out:        out,
		log:        log.With(logger.Component("cli_enrollments")),
	}
}

// Enroll reserves a seat for a student on a course.
func (h *EnrollmentHandler) Enroll(ctx context.Context) error {
	studentID, err := h.prompt.ReadRequired("Student ID")
	if err != nil {
		return err
	}
	courseID, err := h.prompt.ReadRequired("Course ID")
	if err != nil {
		return err
	}
	days, err := h.prompt.ReadInt("Completion window (days, 0 = default)", 0)
	if err != nil {
		return err
	}

	result, err := h.enroll.Handle(ctx, command.EnrollStudentCommand{
		StudentID:        studentID,
		CourseID:         courseID,
		CompletionWindow: time.Duration(days) * 24 * time.Hour,
		Actor:            h.actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrStudentNotFound):
			fmt.Fprintln(h.out, "Student not found.")
		case errors.Is(err, shared.ErrCourseNotFound):
			fmt.Fprintln(h.out, "Course not found.")
		case errors.Is(err, shared.ErrCapacityExceeded):
			fmt.Fprintln(h.out, "The course is full.")
		case errors.Is(err, shared.ErrDuplicateEnrollment):
			fmt.Fprintln(h.out, "The student already has a live enrollment on this course.")
		default:
			return err
		}
		return nil
	}

	fmt.Fprintf(h.out, "Enrolled: %s (status %s, %d seat(s) remaining, complete by %s)\n",
		result.EnrollmentID, result.Status, result.SeatsRemaining,
		result.ExpectedCompletionAt.Format("2006-01-02"))
	return nil
}

// Transition applies a lifecycle action to an enrollment.
func (h *EnrollmentHandler) Transition(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	action, err := h.prompt.Choose("Action", "confirm", "cancel", "withdraw", "fail")
	if err != nil {
		return err
	}

	result, err := h.transition.Handle(ctx, command.TransitionEnrollmentCommand{
		EnrollmentID: id,
		Action:       command.TransitionAction(action),
		Actor:        h.actor,
	})
	if err != nil {
		if errors.Is(err, shared.ErrEnrollmentNotFound) {
			fmt.Fprintln(h.out, "Enrollment not found.")
			return nil
		}
		if errors.Is(err, shared.ErrInvalidTransition) {
			fmt.Fprintf(h.out, "Transition not allowed: %v\n", err)
			return nil
		}
		return err
	}

	fmt.Fprintf(h.out, "Enrollment %s: %s -> %s\n", result.EnrollmentID, result.FromStatus, result.ToStatus)
	return nil
}

// Attendance records presence or absence for one class date.
func (h *EnrollmentHandler) Attendance(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	classDate, err := h.prompt.ReadDate("Class date")
	if err != nil {
		return err
	}
	present, err := h.prompt.ReadBool("Present")
	if err != nil {
		return err
	}

	result, err := h.attendance.Handle(ctx, command.RecordAttendanceCommand{
		EnrollmentID: id,
		ClassDate:    classDate,
		Present:      present,
		Actor:        h.actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrEnrollmentNotFound):
			fmt.Fprintln(h.out, "Enrollment not found.")
		case errors.Is(err, shared.ErrDuplicateAttendance):
			fmt.Fprintln(h.out, "Attendance for this date is already recorded.")
		default:
			return err
		}
		return nil
	}

	fmt.Fprintf(h.out, "Recorded. Attendance rate: %.0f%% over %d class(es)\n",
		result.AttendanceRate*100, result.TotalRecords)
	return nil
}

// Grade records an assessment score.
func (h *EnrollmentHandler) Grade(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	assessment, err := h.prompt.ReadRequired("Assessment name")
	if err != nil {
		return err
	}
	score, err := h.prompt.ReadFloat("Score (0-100)")
	if err != nil {
		return err
	}

	result, err := h.grade.Handle(ctx, command.RecordGradeCommand{
		EnrollmentID: id,
		Assessment:   assessment,
		Score:        score,
		Actor:        h.actor,
	})
	if err != nil {
		if errors.Is(err, shared.ErrEnrollmentNotFound) {
			fmt.Fprintln(h.out, "Enrollment not found.")
			return nil
		}
		return err
	}

	fmt.Fprintf(h.out, "Recorded. Average grade: %.1f over %d assessment(s)\n",
		result.AverageGrade, result.TotalGrades)
	return nil
}

// Progress updates the completion percentage.
func (h *EnrollmentHandler) Progress(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	percent, err := h.prompt.ReadInt("New progress percent", 0)
	if err != nil {
		return err
	}

	result, err := h.progress.Handle(ctx, command.UpdateProgressCommand{
		EnrollmentID: id,
		NewPercent:   percent,
		Actor:        h.actor,
	})
	if err != nil {
		if errors.Is(err, shared.ErrEnrollmentNotFound) {
			fmt.Fprintln(h.out, "Enrollment not found.")
			return nil
		}
		if errors.Is(err, shared.ErrInvalidProgress) {
			fmt.Fprintln(h.out, "Progress must stay within 0-100 and can only move forward.")
			return nil
		}
		return err
	}

	fmt.Fprintf(h.out, "Progress: %d%% -> %d%%\n", result.PreviousPercent, result.NewPercent)
	if result.AutoCompleted {
		fmt.Fprintln(h.out, "Enrollment auto-completed and certificate issued.")
	}
	return nil
}

// Complete finishes an enrollment and issues its certificate.
func (h *EnrollmentHandler) Complete(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	issuedBy, err := h.prompt.ReadLine("Issued by [system]")
	if err != nil {
		return err
	}

	result, err := h.complete.Handle(ctx, command.CompleteEnrollmentCommand{
		EnrollmentID: id,
		IssuedBy:     issuedBy,
		Actor:        h.actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrEnrollmentNotFound):
			fmt.Fprintln(h.out, "Enrollment not found.")
		case errors.Is(err, shared.ErrIncompleteProgress):
			fmt.Fprintln(h.out, "Progress must reach 100% before completion.")
		case errors.Is(err, shared.ErrInvalidTransition):
			fmt.Fprintf(h.out, "Completion not allowed: %v\n", err)
		case errors.Is(err, shared.ErrAlreadyCertified):
			fmt.Fprintln(h.out, "A certificate has already been issued for this enrollment.")
		default:
			return err
		}
		return nil
	}

	fmt.Fprintf(h.out, "Completed at %s\n", result.CompletedAt.Format(time.DateTime))
	fmt.Fprintf(h.out, "Certificate %s issued.\n", result.CertificateNumber)
	// The plaintext code is shown exactly once; only its digest is stored.
	fmt.Fprintf(h.out, "Verification code (shown once, store it safely): %s\n", result.VerificationCode)
	return nil
}

// List prints a page of enrollments with optional filters.
func (h *EnrollmentHandler) List(ctx context.Context) error {
	courseID, err := h.prompt.ReadLine("Course ID filter [skip]")
	if err != nil {
		return err
	}
	studentID, err := h.prompt.ReadLine("Student ID filter [skip]")
	if err != nil {
		return err
	}
	status, err := h.prompt.Choose("Status filter",
		"all", "pending", "active", "completed", "withdrawn", "failed")
	if err != nil {
		return err
	}
	page, err := h.prompt.ReadInt("Page", 1)
	if err != nil {
		return err
	}

	q := query.ListEnrollmentsQuery{
		CourseID:  courseID,
		StudentID: studentID,
		Page:      page,
	}
	if status != "all" {
		q.Status = status
	}
	result, err := h.list.Handle(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprint(h.out, presenter.EnrollmentTable(result.Enrollments))
	fmt.Fprintf(h.out, "Page %d (page size %d)\n", result.Page, result.PageSize)
	return nil
}
