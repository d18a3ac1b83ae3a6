package command

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE ENROLLMENT COMMAND
// Переводит зачисление в Completed и выдаёт сертификат в одной атомарной
// операции. Если выдача сертификата не удалась, завершение откатывается:
// зачисление остаётся Active, завершённых зачислений без сертификата
// не бывает.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteEnrollmentCommand содержит данные для завершения курса.
type CompleteEnrollmentCommand struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// IssuedBy - издатель сертификата (пусто = издатель по умолчанию).
	IssuedBy string

	// Actor - кто инициировал завершение (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c CompleteEnrollmentCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("complete_enrollment: enrollment_id is required")
	}
	return nil
}

// CompleteEnrollmentResult содержит результат завершения.
type CompleteEnrollmentResult struct {
	// EnrollmentID - ID зачисления.
	EnrollmentID string

	// CompletedAt - время завершения.
	CompletedAt time.Time

	// CertificateID - ID выданного сертификата.
	CertificateID string

	// CertificateNumber - человекочитаемый номер сертификата.
	CertificateNumber string

	// VerificationCode - проверочный код. Показывается владельцу один раз;
	// в журнал аудита не попадает.
	VerificationCode certificate.VerificationCode
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteEnrollmentHandler handles the CompleteEnrollmentCommand.
type CompleteEnrollmentHandler struct {
	enrollmentRepo  enrollment.Repository
	certificateRepo certificate.Repository
	atomic          enrollment.Atomic
	eventPublisher  shared.EventPublisher
	log             *logger.Logger
}

// NewCompleteEnrollmentHandler creates a new CompleteEnrollmentHandler.
func NewCompleteEnrollmentHandler(
	enrollmentRepo enrollment.Repository,
	certificateRepo certificate.Repository,
	atomic enrollment.Atomic,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *CompleteEnrollmentHandler {
	return &CompleteEnrollmentHandler{
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		atomic:          atomic,
		eventPublisher:  eventPublisher,
		log:             log.With(logger.Component("complete_enrollment")),
	}
}

// Handle executes the complete enrollment command.
func (h *CompleteEnrollmentHandler) Handle(ctx context.Context, cmd CompleteEnrollmentCommand) (*CompleteEnrollmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Курс нужен только как граница сериализации, поэтому читаем
	// зачисление заранее.
	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}

	var (
		result     *CompleteEnrollmentResult
		fromStatus = enr.Status
	)

	err = h.atomic.WithinCourse(ctx, enr.CourseID, func(ctx context.Context) error {
		// Перечитываем внутри атомарной границы: статус мог измениться.
		enr, err = h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
		if err != nil {
			return err
		}
		fromStatus = enr.Status

		if err := enr.Complete(); err != nil {
			return err
		}
		if err := h.enrollmentRepo.Update(ctx, enr); err != nil {
			return err
		}

		cert, err := issueCertificate(ctx, h.certificateRepo, enr.ID, cmd.IssuedBy)
		if err != nil {
			// Откат: завершение без сертификата не фиксируется.
			return err
		}

		result = &CompleteEnrollmentResult{
			EnrollmentID:      enr.ID,
			CompletedAt:       *enr.CompletedAt,
			CertificateID:     cert.ID,
			CertificateNumber: cert.Number,
			VerificationCode:  cert.Code,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.log.Info("enrollment completed",
		logger.EnrollmentID(result.EnrollmentID),
		logger.CertificateID(result.CertificateID),
		logger.String("certificate_number", result.CertificateNumber),
	)

	_ = h.eventPublisher.Publish(shared.NewEnrollmentTransitionedEvent(
		result.EnrollmentID, fromStatus.String(), enrollment.StatusCompleted.String(), cmd.Actor,
	))
	_ = h.eventPublisher.Publish(shared.NewCertificateIssuedEvent(
		result.CertificateID, result.CertificateNumber, result.EnrollmentID, cmd.Actor,
	))

	return result, nil
}
