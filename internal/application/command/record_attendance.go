package command

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ATTENDANCE COMMAND
// Добавляет отметку посещаемости за календарную дату. На одну дату
// допускается одна отметка; записи append-only. Чтение и запись проходят
// через WithinCourse, поэтому конкурентные отметки за одну дату не
// обходят проверку дубликата.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceCommand содержит данные для отметки посещаемости.
type RecordAttendanceCommand struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// ClassDate - дата занятия (нулевое значение = сегодня).
	ClassDate time.Time

	// Present - присутствовал ли студент.
	Present bool

	// Actor - кто сделал отметку (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c RecordAttendanceCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("record_attendance: enrollment_id is required")
	}
	return nil
}

// RecordAttendanceResult содержит результат отметки.
type RecordAttendanceResult struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// ClassDate - нормализованная дата занятия.
	ClassDate time.Time

	// Present - зафиксированное присутствие.
	Present bool

	// AttendanceRate - доля посещённых занятий после отметки.
	AttendanceRate float64

	// TotalRecords - общее количество отметок.
	TotalRecords int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceHandler handles the RecordAttendanceCommand.
type RecordAttendanceHandler struct {
	enrollmentRepo enrollment.Repository
	atomic         enrollment.Atomic
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewRecordAttendanceHandler creates a new RecordAttendanceHandler.
func NewRecordAttendanceHandler(
	enrollmentRepo enrollment.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RecordAttendanceHandler {
	return &RecordAttendanceHandler{
		enrollmentRepo: enrollmentRepo,
		atomic:         atomic,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("record_attendance")),
	}
}

// Handle executes the record attendance command.
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (*RecordAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	classDate := cmd.ClassDate
	if classDate.IsZero() {
		classDate = timeutil.Today()
	}

	// Первое чтение только определяет курс для границы сериализации.
	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}

	err = h.atomic.WithinCourse(ctx, enr.CourseID, func(ctx context.Context) error {
		enr, err = h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
		if err != nil {
			return err
		}
		if err := enr.RecordAttendance(classDate, cmd.Present); err != nil {
			return err
		}
		return h.enrollmentRepo.Update(ctx, enr)
	})
	if err != nil {
		return nil, err
	}

	day := enrollment.NormalizeClassDate(classDate)

	h.log.Info("attendance recorded",
		logger.EnrollmentID(enr.ID),
		logger.String("class_date", timeutil.FormatDate(day)),
		logger.Bool("present", cmd.Present),
	)

	_ = h.eventPublisher.Publish(shared.NewAttendanceRecordedEvent(
		enr.ID, day, cmd.Present, cmd.Actor,
	))

	return &RecordAttendanceResult{
		EnrollmentID:   enr.ID,
		ClassDate:      day,
		Present:        cmd.Present,
		AttendanceRate: enr.AttendanceRate(),
		TotalRecords:   len(enr.Attendance),
	}, nil
}
