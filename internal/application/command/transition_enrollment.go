package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITION ENROLLMENT COMMAND
// Переводит зачисление по жизненному циклу: подтверждение, отмена, отказ,
// неуспешное завершение. Успешное завершение (Complete) - отдельная команда,
// так как оно атомарно связано с выдачей сертификата. Переход выполняется
// внутри WithinCourse: конкурирующий переход увидит уже новый статус и
// будет отклонён машиной состояний, а не затрёт его устаревшей записью.
// ══════════════════════════════════════════════════════════════════════════════

// TransitionAction определяет запрошенный переход.
type TransitionAction string

const (
	// ActionConfirm - подтверждение зачисления (Pending -> Active).
	ActionConfirm TransitionAction = "confirm"

	// ActionCancel - отмена ожидающего зачисления (Pending -> Withdrawn).
	ActionCancel TransitionAction = "cancel"

	// ActionWithdraw - отказ от курса (Active -> Withdrawn).
	ActionWithdraw TransitionAction = "withdraw"

	// ActionFail - неуспешное завершение (Active -> Failed).
	ActionFail TransitionAction = "fail"
)

// TransitionEnrollmentCommand содержит данные для перехода.
type TransitionEnrollmentCommand struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// Action - запрошенный переход.
	Action TransitionAction

	// Actor - кто инициировал переход (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c TransitionEnrollmentCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("transition_enrollment: enrollment_id is required")
	}
	switch c.Action {
	case ActionConfirm, ActionCancel, ActionWithdraw, ActionFail:
		return nil
	default:
		return fmt.Errorf("transition_enrollment: unknown action: %s", c.Action)
	}
}

// TransitionEnrollmentResult содержит результат перехода.
type TransitionEnrollmentResult struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// FromStatus - статус до перехода.
	FromStatus enrollment.Status

	// ToStatus - статус после перехода.
	ToStatus enrollment.Status

	// TransitionedAt - время перехода.
	TransitionedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// TransitionEnrollmentHandler handles the TransitionEnrollmentCommand.
type TransitionEnrollmentHandler struct {
	enrollmentRepo enrollment.Repository
	atomic         enrollment.Atomic
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewTransitionEnrollmentHandler creates a new TransitionEnrollmentHandler.
func NewTransitionEnrollmentHandler(
	enrollmentRepo enrollment.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *TransitionEnrollmentHandler {
	return &TransitionEnrollmentHandler{
		enrollmentRepo: enrollmentRepo,
		atomic:         atomic,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("transition_enrollment")),
	}
}

// Handle executes the transition command.
func (h *TransitionEnrollmentHandler) Handle(ctx context.Context, cmd TransitionEnrollmentCommand) (*TransitionEnrollmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("transition_enrollment: validation failed: %w", err)
	}

	// Первое чтение только определяет курс для границы сериализации.
	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}

	var fromStatus enrollment.Status
	err = h.atomic.WithinCourse(ctx, enr.CourseID, func(ctx context.Context) error {
		enr, err = h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
		if err != nil {
			return err
		}
		fromStatus = enr.Status

		switch cmd.Action {
		case ActionConfirm:
			err = enr.Confirm()
		case ActionCancel:
			err = enr.Cancel()
		case ActionWithdraw:
			err = enr.Withdraw()
		case ActionFail:
			err = enr.Fail()
		}
		if err != nil {
			return err
		}
		return h.enrollmentRepo.Update(ctx, enr)
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("enrollment transitioned",
		logger.EnrollmentID(enr.ID),
		logger.String("from", fromStatus.String()),
		logger.String("to", enr.Status.String()),
		logger.String("actor", cmd.Actor.OrSystem().String()),
	)

	_ = h.eventPublisher.Publish(shared.NewEnrollmentTransitionedEvent(
		enr.ID, fromStatus.String(), enr.Status.String(), cmd.Actor,
	))

	return &TransitionEnrollmentResult{
		EnrollmentID:   enr.ID,
		FromStatus:     fromStatus,
		ToStatus:       enr.Status,
		TransitionedAt: enr.UpdatedAt,
	}, nil
}
