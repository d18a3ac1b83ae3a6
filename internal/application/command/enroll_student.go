// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL STUDENT COMMAND
// Создаёт новое зачисление в статусе Pending, резервируя место в курсе.
// Проверка вместимости и создание записи выполняются в одной атомарной
// операции, чтобы конкурентные зачисления не превысили лимит мест.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand содержит данные для зачисления студента на курс.
type EnrollStudentCommand struct {
	// StudentID - ID студента.
	StudentID string

	// CourseID - ID курса.
	CourseID string

	// CompletionWindow - срок на завершение курса (0 = значение по умолчанию).
	CompletionWindow time.Duration

	// Actor - кто инициировал зачисление (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c EnrollStudentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("enroll_student: student_id is required")
	}
	if c.CourseID == "" {
		return errors.New("enroll_student: course_id is required")
	}
	if c.CompletionWindow < 0 {
		return errors.New("enroll_student: completion window cannot be negative")
	}
	return nil
}

// EnrollStudentResult содержит результат зачисления.
type EnrollStudentResult struct {
	// EnrollmentID - ID созданного зачисления.
	EnrollmentID string

	// Status - статус зачисления (всегда Pending при создании).
	Status enrollment.Status

	// ExpectedCompletionAt - ожидаемый срок завершения курса.
	ExpectedCompletionAt time.Time

	// SeatsRemaining - количество свободных мест после резервирования.
	SeatsRemaining int

	// EnrolledAt - время зачисления.
	EnrolledAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentHandler handles the EnrollStudentCommand.
type EnrollStudentHandler struct {
	enrollmentRepo enrollment.Repository
	courseRepo     course.Repository
	studentRepo    student.Repository
	atomic         enrollment.Atomic
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewEnrollStudentHandler creates a new EnrollStudentHandler.
func NewEnrollStudentHandler(
	enrollmentRepo enrollment.Repository,
	courseRepo course.Repository,
	studentRepo student.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *EnrollStudentHandler {
	return &EnrollStudentHandler{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		studentRepo:    studentRepo,
		atomic:         atomic,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("enroll_student")),
	}
}

// Handle executes the enroll student command.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("enroll_student: validation failed: %w", err)
	}

	// Both references must exist before a seat is touched.
	stud, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, err
	}
	if !stud.Status.CanEnroll() {
		return nil, shared.ErrStudentNotActive
	}

	crs, err := h.courseRepo.GetByID(ctx, cmd.CourseID)
	if err != nil {
		return nil, err
	}
	if !crs.IsActive {
		return nil, shared.ErrCourseInactive
	}

	var result *EnrollStudentResult

	// Резервирование места и создание зачисления - одна атомарная операция.
	// Вместимость пересчитывается по живым зачислениям внутри той же границы.
	err = h.atomic.WithinCourse(ctx, cmd.CourseID, func(ctx context.Context) error {
		exists, err := h.enrollmentRepo.ExistsActivePair(ctx, cmd.StudentID, cmd.CourseID)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrDuplicateEnrollment
		}

		taken, err := h.enrollmentRepo.CountSeatsTaken(ctx, cmd.CourseID)
		if err != nil {
			return err
		}
		snapshot := course.NewCapacitySnapshot(crs.ID, crs.MaxSeats, taken)
		if !snapshot.HasSeat() {
			return shared.ErrCapacityExceeded
		}

		enr, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
			ID:               uuid.NewString(),
			StudentID:        cmd.StudentID,
			CourseID:         cmd.CourseID,
			CompletionWindow: cmd.CompletionWindow,
		})
		if err != nil {
			return err
		}

		if err := h.enrollmentRepo.Create(ctx, enr); err != nil {
			return err
		}

		result = &EnrollStudentResult{
			EnrollmentID:         enr.ID,
			Status:               enr.Status,
			ExpectedCompletionAt: enr.ExpectedCompletionAt,
			SeatsRemaining:       snapshot.AvailableSeats() - 1,
			EnrolledAt:           enr.EnrolledAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("student enrolled",
		logger.EnrollmentID(result.EnrollmentID),
		logger.StudentID(cmd.StudentID),
		logger.CourseID(cmd.CourseID),
		logger.Int("seats_remaining", result.SeatsRemaining),
	)

	// Аудит - fire-and-forget: сбой публикации не откатывает зачисление.
	_ = h.eventPublisher.Publish(shared.NewEnrollmentCreatedEvent(
		result.EnrollmentID, cmd.StudentID, cmd.CourseID, cmd.Actor,
	))

	return result, nil
}
