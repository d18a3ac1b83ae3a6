package command

import (
	"context"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE PENDING ENROLLMENTS COMMAND
// Отменяет Pending-зачисления, просрочившие ожидаемый срок завершения.
// Запускается фоновой задачей; каждая отмена освобождает место в курсе.
// ══════════════════════════════════════════════════════════════════════════════

// ExpirePendingCommand содержит параметры для отмены просроченных зачислений.
type ExpirePendingCommand struct {
	// Before - отменять зачисления с ожидаемым сроком раньше этого момента
	// (нулевое значение = сейчас).
	Before time.Time
}

// ExpirePendingResult содержит результат выполнения.
type ExpirePendingResult struct {
	// Scanned - количество найденных просроченных зачислений.
	Scanned int

	// Expired - количество успешно отменённых.
	Expired int

	// Failed - количество отмен, завершившихся ошибкой.
	Failed int
}

// ExpirePendingHandler handles the ExpirePendingCommand.
type ExpirePendingHandler struct {
	enrollmentRepo enrollment.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewExpirePendingHandler creates a new ExpirePendingHandler.
func NewExpirePendingHandler(
	enrollmentRepo enrollment.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *ExpirePendingHandler {
	return &ExpirePendingHandler{
		enrollmentRepo: enrollmentRepo,
		eventPublisher: eventPublisher,
		log:            log.With(logger.Component("expire_pending")),
	}
}

// Handle executes the expire pending command.
func (h *ExpirePendingHandler) Handle(ctx context.Context, cmd ExpirePendingCommand) (*ExpirePendingResult, error) {
	before := cmd.Before
	if before.IsZero() {
		before = time.Now().UTC()
	}

	overdue, err := h.enrollmentRepo.FindOverduePending(ctx, before)
	if err != nil {
		return nil, err
	}

	result := &ExpirePendingResult{Scanned: len(overdue)}

	for _, enr := range overdue {
		if err := enr.Cancel(); err != nil {
			// Зачисление могло измениться между выборкой и отменой.
			result.Failed++
			continue
		}
		if err := h.enrollmentRepo.Update(ctx, enr); err != nil {
			result.Failed++
			h.log.Error("failed to expire enrollment",
				logger.EnrollmentID(enr.ID),
				logger.Err(err),
			)
			continue
		}

		result.Expired++
		_ = h.eventPublisher.Publish(shared.NewEnrollmentTransitionedEvent(
			enr.ID,
			enrollment.StatusPending.String(),
			enrollment.StatusWithdrawn.String(),
			shared.ActorSystem,
		))
	}

	if result.Scanned > 0 {
		h.log.Info("expired overdue pending enrollments",
			logger.Int("scanned", result.Scanned),
			logger.Int("expired", result.Expired),
			logger.Int("failed", result.Failed),
		)
	}

	return result, nil
}
