package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISSUE CERTIFICATE COMMAND
// Выдаёт сертификат за завершённое зачисление. Повторный вызов для того же
// зачисления идемпотентен: возвращается уже выданный сертификат.
// ══════════════════════════════════════════════════════════════════════════════

// maxCodeAttempts ограничивает количество попыток сгенерировать уникальный
// проверочный код при коллизии. Пространство кодов - 130 бит, так что
// коллизия на практике означает неисправный источник случайности.
const maxCodeAttempts = 5

// IssueCertificateCommand содержит данные для выдачи сертификата.
type IssueCertificateCommand struct {
	// EnrollmentID - ID завершённого зачисления.
	EnrollmentID string

	// IssuedBy - издатель (пусто = издатель по умолчанию).
	IssuedBy string

	// Actor - кто инициировал выдачу (для журнала аудита).
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c IssueCertificateCommand) Validate() error {
	if c.EnrollmentID == "" {
		return errors.New("issue_certificate: enrollment_id is required")
	}
	return nil
}

// IssueCertificateResult содержит результат выдачи.
type IssueCertificateResult struct {
	// CertificateID - ID сертификата.
	CertificateID string

	// Number - человекочитаемый номер сертификата.
	Number string

	// Code - проверочный код. Показывается владельцу при выдаче;
	// в журнал аудита не попадает.
	Code certificate.VerificationCode

	// AlreadyIssued - true, если сертификат был выдан ранее.
	AlreadyIssued bool

	// IssuedAt - время выдачи.
	IssuedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// IssueCertificateHandler handles the IssueCertificateCommand.
type IssueCertificateHandler struct {
	enrollmentRepo  enrollment.Repository
	certificateRepo certificate.Repository
	eventPublisher  shared.EventPublisher
	log             *logger.Logger
}

// NewIssueCertificateHandler creates a new IssueCertificateHandler.
func NewIssueCertificateHandler(
	enrollmentRepo enrollment.Repository,
	certificateRepo certificate.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *IssueCertificateHandler {
	return &IssueCertificateHandler{
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		eventPublisher:  eventPublisher,
		log:             log.With(logger.Component("issue_certificate")),
	}
}

// Handle executes the issue certificate command.
func (h *IssueCertificateHandler) Handle(ctx context.Context, cmd IssueCertificateCommand) (*IssueCertificateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("issue_certificate: validation failed: %w", err)
	}

	enr, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enr.Status != enrollment.StatusCompleted {
		return nil, shared.ErrEnrollmentNotComplete
	}

	// Идемпотентность: повторная выдача возвращает существующий сертификат.
	existing, err := h.certificateRepo.GetByEnrollment(ctx, cmd.EnrollmentID)
	if err == nil {
		return &IssueCertificateResult{
			CertificateID: existing.ID,
			Number:        existing.Number,
			Code:          existing.Code,
			AlreadyIssued: true,
			IssuedAt:      existing.IssuedAt,
		}, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	cert, err := issueCertificate(ctx, h.certificateRepo, cmd.EnrollmentID, cmd.IssuedBy)
	if err != nil {
		return nil, err
	}

	h.log.Info("certificate issued",
		logger.CertificateID(cert.ID),
		logger.EnrollmentID(cmd.EnrollmentID),
		logger.String("number", cert.Number),
	)

	_ = h.eventPublisher.Publish(shared.NewCertificateIssuedEvent(
		cert.ID, cert.Number, cmd.EnrollmentID, cmd.Actor,
	))

	return &IssueCertificateResult{
		CertificateID: cert.ID,
		Number:        cert.Number,
		Code:          cert.Code,
		AlreadyIssued: false,
		IssuedAt:      cert.IssuedAt,
	}, nil
}

// issueCertificate генерирует уникальный проверочный код и сохраняет
// сертификат. При коллизии кода (уникальный индекс хранилища) генерация
// повторяется; после maxCodeAttempts попыток возвращается
// ErrCodeGenerationExhausted, и никакой сертификат не сохраняется.
func issueCertificate(
	ctx context.Context,
	repo certificate.Repository,
	enrollmentID, issuedBy string,
) (*certificate.Certificate, error) {
	seq, err := repo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := certificate.GenerateCode()
		if err != nil {
			return nil, err
		}

		cert, err := certificate.NewCertificate(certificate.NewCertificateParams{
			ID:           uuid.NewString(),
			EnrollmentID: enrollmentID,
			Code:         code,
			IssuedBy:     issuedBy,
			Sequence:     seq,
		})
		if err != nil {
			return nil, err
		}

		err = repo.Create(ctx, cert)
		if err == nil {
			return cert, nil
		}
		if errors.Is(err, shared.ErrDuplicateCode) {
			continue
		}
		return nil, err
	}

	return nil, shared.ErrCodeGenerationExhausted
}

// ══════════════════════════════════════════════════════════════════════════════
// REVOKE CERTIFICATE COMMAND
// Отзывает сертификат. Запись не удаляется: отзыв - смена статуса,
// последующие проверки по коду сообщают об отзыве.
// ══════════════════════════════════════════════════════════════════════════════

// RevokeCertificateCommand содержит данные для отзыва сертификата.
type RevokeCertificateCommand struct {
	// CertificateID - ID сертификата.
	CertificateID string

	// Reason - причина отзыва.
	Reason string

	// Actor - кто инициировал отзыв.
	Actor shared.Actor
}

// Validate проверяет корректность команды.
func (c RevokeCertificateCommand) Validate() error {
	if c.CertificateID == "" {
		return errors.New("revoke_certificate: certificate_id is required")
	}
	if c.Reason == "" {
		return errors.New("revoke_certificate: reason is required")
	}
	return nil
}

// CertificateInvalidator выбрасывает сертификат из кэша проверки,
// чтобы отзыв стал виден сразу, а не после истечения TTL.
type CertificateInvalidator interface {
	// Invalidate удаляет запись кэша по дайджесту кода.
	Invalidate(ctx context.Context, digest string)
}

// RevokeCertificateHandler handles the RevokeCertificateCommand.
type RevokeCertificateHandler struct {
	certificateRepo certificate.Repository
	invalidator     CertificateInvalidator
	log             *logger.Logger
}

// NewRevokeCertificateHandler creates a new RevokeCertificateHandler.
// invalidator may be nil when no lookup cache is configured.
func NewRevokeCertificateHandler(
	certificateRepo certificate.Repository,
	invalidator CertificateInvalidator,
	log *logger.Logger,
) *RevokeCertificateHandler {
	return &RevokeCertificateHandler{
		certificateRepo: certificateRepo,
		invalidator:     invalidator,
		log:             log.With(logger.Component("revoke_certificate")),
	}
}

// Handle executes the revoke certificate command.
func (h *RevokeCertificateHandler) Handle(ctx context.Context, cmd RevokeCertificateCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("revoke_certificate: validation failed: %w", err)
	}

	cert, err := h.certificateRepo.GetByID(ctx, cmd.CertificateID)
	if err != nil {
		return err
	}

	if err := cert.Revoke(cmd.Reason); err != nil {
		return err
	}

	if err := h.certificateRepo.Update(ctx, cert); err != nil {
		return err
	}

	if h.invalidator != nil {
		h.invalidator.Invalidate(ctx, cert.CodeDigest)
	}

	h.log.Warn("certificate revoked",
		logger.CertificateID(cert.ID),
		logger.String("reason", cmd.Reason),
		logger.String("actor", cmd.Actor.OrSystem().String()),
	)

	return nil
}
