package command

import (
	"context"
	"errors"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// Выставляет оценку за контрольную работу и пересчитывает среднюю оценку
// зачисления (невзвешенное арифметическое среднее). Чтение и запись
// проходят через WithinCourse, поэтому конкурентные оценки не теряются.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand содержит данные для выставления оценки.
type RecordGradeCommand struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// Assessment - название контрольной работы.
	Assessment string

	// Score - балл по шкале 0-100.
	Score float64

	// Actor - кто выставил оценку (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c RecordGradeCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("record_grade: enrollment_id is required")
	}
	if c.Assessment == "" {
		return errors.New("record_grade: assessment is required")
	}
	return nil
}

// RecordGradeResult содержит результат выставления оценки.
type RecordGradeResult struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// Assessment - название контрольной работы.
	Assessment string

	// Score - выставленный балл.
	Score float64

	// AverageGrade - средняя оценка после пересчёта.
	AverageGrade float64

	// TotalGrades - общее количество оценок.
	TotalGrades int
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeHandler handles the RecordGradeCommand.
type RecordGradeHandler struct {
	enrollmentRepo enrollment.Repository
	atomic         enrollment.Atomic
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewRecordGradeHandler creates a new RecordGradeHandler.
func NewRecordGradeHandler(
	enrollmentRepo enrollment.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RecordGradeHandler {
	return &RecordGradeHandler{
		enrollmentRepo: enrollmentRepo,
		atomic:         atomic,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("record_grade")),
	}
}

// Handle executes the record grade command.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*RecordGradeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
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
		if err := enr.RecordGrade(cmd.Assessment, cmd.Score); err != nil {
			return err
		}
		return h.enrollmentRepo.Update(ctx, enr)
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("grade recorded",
		logger.EnrollmentID(enr.ID),
		logger.String("assessment", cmd.Assessment),
		logger.Float64("score", cmd.Score),
		logger.Float64("average", enr.AverageGrade),
	)

	score, _ := shared.NewScore(cmd.Score)
	_ = h.eventPublisher.Publish(shared.NewGradeRecordedEvent(
		enr.ID, cmd.Assessment, score, enr.AverageGrade, cmd.Actor,
	))

	return &RecordGradeResult{
		EnrollmentID: enr.ID,
		Assessment:   cmd.Assessment,
		Score:        cmd.Score,
		AverageGrade: enr.AverageGrade,
		TotalGrades:  len(enr.Grades),
	}, nil
}
