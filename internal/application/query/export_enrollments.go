package query

import (
	"context"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT ENROLLMENTS QUERY
// Потоковая выгрузка зачислений для отчётов (CSV). Курсор читает хранилище
// партиями, а не загружает всё в память; прерванная выгрузка возобновляется
// с последнего успешно отданного смещения.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultExportBatchSize - размер партии выгрузки по умолчанию.
const DefaultExportBatchSize = 200

// ExportEnrollmentsQuery содержит параметры выгрузки.
type ExportEnrollmentsQuery struct {
	// CourseID - фильтр по курсу (пусто = все курсы).
	CourseID string

	// Status - фильтр по статусу (пусто = все статусы).
	Status string

	// BatchSize - размер партии (0 = значение по умолчанию).
	BatchSize int

	// ResumeFrom - смещение для возобновления прерванной выгрузки.
	ResumeFrom int
}

// ExportCursor - ленивый курсор выгрузки. Не потокобезопасен.
type ExportCursor struct {
	repo         enrollment.Repository
	certificates certificate.Repository
	retrier      *retry.Retrier
	courseID     string
	status       enrollment.Status
	batchSize    int
	offset       int
	done         bool
}

// Next возвращает следующую партию записей. Пустая партия означает конец
// выгрузки. Смещение продвигается только после успешного чтения, поэтому
// после ошибки повторный вызов перечитывает ту же партию.
func (c *ExportCursor) Next(ctx context.Context) ([]EnrollmentDTO, error) {
	if c.done {
		return nil, nil
	}

	opts := enrollment.ListOptions{
		Offset: c.offset,
		Limit:  c.batchSize,
		Status: c.status,
	}

	batch, err := retry.DoWithData(ctx, c.retrier, func(ctx context.Context) ([]*enrollment.Enrollment, error) {
		if c.courseID != "" {
			return c.repo.GetByCourse(ctx, c.courseID, opts)
		}
		return c.repo.GetAll(ctx, opts)
	})
	if err != nil {
		return nil, err
	}

	if len(batch) == 0 {
		c.done = true
		return nil, nil
	}

	dtos := make([]EnrollmentDTO, 0, len(batch))
	for _, enr := range batch {
		dtos = append(dtos, toEnrollmentDTO(enr))
	}

	// Строки дополняются статусом сертификата до продвижения смещения:
	// при сбое поиска та же партия перечитывается целиком.
	for i := range dtos {
		if dtos[i].Status != enrollment.StatusCompleted.String() {
			continue
		}
		cert, err := c.certificates.GetByEnrollment(ctx, dtos[i].ID)
		if shared.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		dtos[i].CertificateStatus = string(cert.Status)
	}

	c.offset += len(batch)
	if len(batch) < c.batchSize {
		c.done = true
	}
	return dtos, nil
}

// Offset возвращает текущее смещение курсора. Сохранив его, выгрузку
// можно возобновить через ResumeFrom.
func (c *ExportCursor) Offset() int {
	return c.offset
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ExportEnrollmentsHandler handles the ExportEnrollmentsQuery.
type ExportEnrollmentsHandler struct {
	enrollmentRepo  enrollment.Repository
	certificateRepo certificate.Repository
	log             *logger.Logger
}

// NewExportEnrollmentsHandler creates a new ExportEnrollmentsHandler.
func NewExportEnrollmentsHandler(
	enrollmentRepo enrollment.Repository,
	certificateRepo certificate.Repository,
	log *logger.Logger,
) *ExportEnrollmentsHandler {
	return &ExportEnrollmentsHandler{
		enrollmentRepo:  enrollmentRepo,
		certificateRepo: certificateRepo,
		log:             log.With(logger.Component("export_enrollments")),
	}
}

// Handle prepares an export cursor. No data is read until Next is called.
func (h *ExportEnrollmentsHandler) Handle(_ context.Context, q ExportEnrollmentsQuery) (*ExportCursor, error) {
	if q.Status != "" && !enrollment.Status(q.Status).IsValid() {
		return nil, shared.NewDomainError("query", "ExportEnrollments", shared.ErrInvalidInput, "unknown status filter")
	}

	batchSize := q.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultExportBatchSize
	}
	offset := q.ResumeFrom
	if offset < 0 {
		offset = 0
	}

	return &ExportCursor{
		repo:         h.enrollmentRepo,
		certificates: h.certificateRepo,
		retrier:      retry.StorageReadRetrier(shared.IsTransient),
		courseID:     q.CourseID,
		status:       enrollment.Status(q.Status),
		batchSize:    batchSize,
		offset:       offset,
	}, nil
}
