package command

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROGRESS COMMAND
// Обновляет процент прохождения курса. Прогресс монотонно не убывает;
// достижение 100% само по себе не завершает зачисление. Опциональный
// режим автозавершения (выключен по умолчанию) запускает команду
// завершения, когда прогресс достигает 100%.
//
// Чтение и запись выполняются внутри WithinCourse: конкурентные обновления
// одного зачисления сериализуются, устаревший прогресс не затирает свежий.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressCommand содержит данные для обновления прогресса.
type UpdateProgressCommand struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// NewPercent - новый процент прохождения [0,100].
	NewPercent int

	// Actor - кто инициировал обновление (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c UpdateProgressCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("update_progress: enrollment_id is required")
	}
	return nil
}

// UpdateProgressResult содержит результат обновления.
type UpdateProgressResult struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// PreviousPercent - прогресс до обновления.
	PreviousPercent int

	// NewPercent - прогресс после обновления.
	NewPercent int

	// AutoCompleted - true, если сработало автозавершение.
	AutoCompleted bool

	// UpdatedAt - время обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgressHandler handles the UpdateProgressCommand.
type UpdateProgressHandler struct {
	enrollmentRepo enrollment.Repository
	atomic         enrollment.Atomic
	eventPublisher shared.EventPublisher
	log            *logger.Logger

	// autoComplete включает автозавершение при достижении 100%.
	autoComplete bool
	completer    *CompleteEnrollmentHandler
}

// NewUpdateProgressHandler creates a new UpdateProgressHandler.
// completer may be nil when auto-completion is disabled.
func NewUpdateProgressHandler(
	enrollmentRepo enrollment.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
	autoComplete bool,
	completer *CompleteEnrollmentHandler,
) *UpdateProgressHandler {
	return &UpdateProgressHandler{
		enrollmentRepo: enrollmentRepo,
		atomic:         atomic,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("update_progress")),
		autoComplete:   autoComplete && completer != nil,
		completer:      completer,
	}
}

// Handle executes the update progress command.
func (h *UpdateProgressHandler) Handle(ctx context.Context, cmd UpdateProgressCommand) (*UpdateProgressResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Первое чтение только определяет курс для границы сериализации.
	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}

	var previous shared.Progress
	err = h.atomic.WithinCourse(ctx, enr.CourseID, func(ctx context.Context) error {
		enr, err = h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
		if err != nil {
			return err
		}
		previous, err = enr.UpdateProgress(cmd.NewPercent)
		if err != nil {
			return err
		}
		return h.enrollmentRepo.Update(ctx, enr)
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("progress updated",
		logger.EnrollmentID(enr.ID),
		logger.Int("previous_percent", previous.Int()),
		logger.ProgressPercent(enr.Progress.Int()),
	)

	_ = h.eventPublisher.Publish(shared.NewProgressUpdatedEvent(
		enr.ID, previous, enr.Progress, cmd.Actor,
	))

	result := &UpdateProgressResult{
		EnrollmentID:    enr.ID,
		PreviousPercent: previous.Int(),
		NewPercent:      enr.Progress.Int(),
		UpdatedAt:       enr.UpdatedAt,
	}

	if h.autoComplete && enr.Progress.IsComplete() {
		if _, err := h.completer.Handle(ctx, CompleteEnrollmentCommand{
			EnrollmentID: enr.ID,
			Actor:        shared.ActorSystem,
		}); err != nil {
			// Автозавершение не откатывает уже сохранённый прогресс.
			h.log.Warn("auto-completion failed",
				logger.EnrollmentID(enr.ID),
				logger.Err(err),
			)
		} else {
			result.AutoCompleted = true
		}
	}

	return result, nil
}
