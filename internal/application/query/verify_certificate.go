package query

import (
	"context"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERIFY CERTIFICATE QUERY
// Проверяет подлинность сертификата по проверочному коду. Поиск выполняется
// по дайджесту кода; некорректный формат и отсутствие совпадения дают
// одинаковый ответ, чтобы не раскрывать структуру пространства кодов.
// ══════════════════════════════════════════════════════════════════════════════

// VerifyCertificateQuery содержит код для проверки.
type VerifyCertificateQuery struct {
	// Code - проверочный код в том виде, как его ввёл пользователь.
	Code string
}

// VerificationDTO - результат проверки сертификата.
type VerificationDTO struct {
	// Found - найден ли сертификат по коду.
	Found bool `json:"found"`

	// Valid - действителен ли сертификат (найден и не отозван).
	Valid bool `json:"valid"`

	// Number - номер сертификата (только для найденных).
	Number string `json:"number,omitempty"`

	// EnrollmentID - зачисление, за которое выдан сертификат.
	EnrollmentID string `json:"enrollment_id,omitempty"`

	// IssuedBy - издатель.
	IssuedBy string `json:"issued_by,omitempty"`

	// IssuedAt - время выдачи.
	IssuedAt *time.Time `json:"issued_at,omitempty"`

	// Revoked - отозван ли сертификат.
	Revoked bool `json:"revoked"`

	// RevokedReason - причина отзыва.
	RevokedReason string `json:"revoked_reason,omitempty"`

	// CheckedAt - время проверки.
	CheckedAt time.Time `json:"checked_at"`
}

// CertificateLookup - быстрый поиск сертификата по дайджесту кода.
// Кэш перед основным хранилищем; промах или сбой кэша прозрачно
// переводит поиск в хранилище.
type CertificateLookup interface {
	// GetByDigest возвращает сертификат по дайджесту кода из кэша.
	GetByDigest(ctx context.Context, digest string) (*certificate.Certificate, bool)

	// Put сохраняет сертификат в кэш.
	Put(ctx context.Context, cert *certificate.Certificate)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// VerifyCertificateHandler handles the VerifyCertificateQuery.
type VerifyCertificateHandler struct {
	certificateRepo certificate.Repository
	lookup          CertificateLookup
	retrier         *retry.Retrier
	log             *logger.Logger
}

// NewVerifyCertificateHandler creates a new VerifyCertificateHandler.
// lookup may be nil, in which case every check hits the primary store.
func NewVerifyCertificateHandler(
	certificateRepo certificate.Repository,
	lookup CertificateLookup,
	log *logger.Logger,
) *VerifyCertificateHandler {
	return &VerifyCertificateHandler{
		certificateRepo: certificateRepo,
		lookup:          lookup,
		retrier:         retry.StorageReadRetrier(shared.IsTransient),
		log:             log.With(logger.Component("verify_certificate")),
	}
}

// Handle executes the verify certificate query.
func (h *VerifyCertificateHandler) Handle(ctx context.Context, q VerifyCertificateQuery) (*VerificationDTO, error) {
	checkedAt := time.Now().UTC()

	code, err := certificate.ParseVerificationCode(q.Code)
	if err != nil {
		// Некорректный формат неотличим от отсутствия совпадения.
		return &VerificationDTO{Found: false, CheckedAt: checkedAt}, nil
	}

	digest := code.Digest()

	var cert *certificate.Certificate
	if h.lookup != nil {
		if cached, ok := h.lookup.GetByDigest(ctx, digest); ok {
			cert = cached
		}
	}

	if cert == nil {
		cert, err = retry.DoWithData(ctx, h.retrier, func(ctx context.Context) (*certificate.Certificate, error) {
			return h.certificateRepo.GetByCodeDigest(ctx, digest)
		})
		if err != nil {
			if shared.IsNotFound(err) {
				return &VerificationDTO{Found: false, CheckedAt: checkedAt}, nil
			}
			return nil, err
		}
		if h.lookup != nil {
			h.lookup.Put(ctx, cert)
		}
	}

	issuedAt := cert.IssuedAt
	return &VerificationDTO{
		Found:         true,
		Valid:         !cert.IsRevoked(),
		Number:        cert.Number,
		EnrollmentID:  cert.EnrollmentID,
		IssuedBy:      cert.IssuedBy,
		IssuedAt:      &issuedAt,
		Revoked:       cert.IsRevoked(),
		RevokedReason: cert.RevokedReason,
		CheckedAt:     checkedAt,
	}, nil
}
