package query

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ENROLLMENTS QUERY
// Возвращает зачисления курса или студента с пагинацией и фильтром
// по статусу.
// ══════════════════════════════════════════════════════════════════════════════

// ListEnrollmentsQuery содержит параметры выборки.
type ListEnrollmentsQuery struct {
	// CourseID - фильтр по курсу (пусто = все курсы).
	CourseID string

	// StudentID - фильтр по студенту (пусто = все студенты).
	StudentID string

	// Status - фильтр по статусу (пусто = все статусы).
	Status string

	// Page - номер страницы (с 1).
	Page int

	// PageSize - размер страницы.
	PageSize int
}

// Validate проверяет корректность параметров запроса.
func (q ListEnrollmentsQuery) Validate() error {
	if q.CourseID != "" && q.StudentID != "" {
		return errors.New("list_enrollments: filter by course or student, not both")
	}
	if q.Status != "" && !enrollment.Status(q.Status).IsValid() {
		return errors.New("list_enrollments: unknown status filter")
	}
	return nil
}

// EnrollmentDTO - запись зачисления для чтения.
type EnrollmentDTO struct {
	// ID - ID зачисления.
	ID string `json:"id"`

	// StudentID - ID студента.
	StudentID string `json:"student_id"`

	// CourseID - ID курса.
	CourseID string `json:"course_id"`

	// Status - статус зачисления.
	Status string `json:"status"`

	// ProgressPercent - процент прохождения.
	ProgressPercent int `json:"progress_percent"`

	// AverageGrade - средняя оценка (0, если оценок нет).
	AverageGrade float64 `json:"average_grade"`

	// AttendanceRate - доля посещённых занятий.
	AttendanceRate float64 `json:"attendance_rate"`

	// GradeCount - количество оценок.
	GradeCount int `json:"grade_count"`

	// AttendanceCount - количество отметок посещаемости.
	AttendanceCount int `json:"attendance_count"`

	// EnrolledAt - время зачисления.
	EnrolledAt time.Time `json:"enrolled_at"`

	// ExpectedCompletionAt - ожидаемый срок завершения.
	ExpectedCompletionAt time.Time `json:"expected_completion_at"`

	// CompletedAt - время завершения (nil, если не завершено).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// CertificateStatus - статус сертификата ("valid"/"revoked"; пусто,
	// если сертификат не выдан). Заполняется только выгрузкой.
	CertificateStatus string `json:"certificate_status,omitempty"`
}

// ListEnrollmentsResult содержит страницу выборки.
type ListEnrollmentsResult struct {
	// Enrollments - записи страницы.
	Enrollments []EnrollmentDTO `json:"enrollments"`

	// Page - номер страницы.
	Page int `json:"page"`

	// PageSize - размер страницы.
	PageSize int `json:"page_size"`
}

// toEnrollmentDTO собирает DTO из доменной сущности.
func toEnrollmentDTO(enr *enrollment.Enrollment) EnrollmentDTO {
	return EnrollmentDTO{
		ID:                   enr.ID,
		StudentID:            enr.StudentID,
		CourseID:             enr.CourseID,
		Status:               enr.Status.String(),
		ProgressPercent:      enr.Progress.Int(),
		AverageGrade:         enr.AverageGrade,
		AttendanceRate:       enr.AttendanceRate(),
		GradeCount:           len(enr.Grades),
		AttendanceCount:      len(enr.Attendance),
		EnrolledAt:           enr.EnrolledAt,
		ExpectedCompletionAt: enr.ExpectedCompletionAt,
		CompletedAt:          enr.CompletedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListEnrollmentsHandler handles the ListEnrollmentsQuery.
type ListEnrollmentsHandler struct {
	enrollmentRepo enrollment.Repository
	retrier        *retry.Retrier
	log            *logger.Logger
}

// NewListEnrollmentsHandler creates a new ListEnrollmentsHandler.
func NewListEnrollmentsHandler(enrollmentRepo enrollment.Repository, log *logger.Logger) *ListEnrollmentsHandler {
	return &ListEnrollmentsHandler{
		enrollmentRepo: enrollmentRepo,
		retrier:        retry.StorageReadRetrier(shared.IsTransient),
		log:            log.With(logger.Component("list_enrollments")),
	}
}

// Handle executes the list enrollments query.
func (h *ListEnrollmentsHandler) Handle(ctx context.Context, q ListEnrollmentsQuery) (*ListEnrollmentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	page := shared.NewPagination(q.Page, q.PageSize)
	opts := enrollment.ListOptions{
		Offset: page.Offset(),
		Limit:  page.Limit(),
		Status: enrollment.Status(q.Status),
	}

	enrollments, err := retry.DoWithData(ctx, h.retrier, func(ctx context.Context) ([]*enrollment.Enrollment, error) {
		switch {
		case q.CourseID != "":
			return h.enrollmentRepo.GetByCourse(ctx, q.CourseID, opts)
		case q.StudentID != "":
			return h.enrollmentRepo.GetByStudent(ctx, q.StudentID, opts)
		default:
			return h.enrollmentRepo.GetAll(ctx, opts)
		}
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]EnrollmentDTO, 0, len(enrollments))
	for _, enr := range enrollments {
		dtos = append(dtos, toEnrollmentDTO(enr))
	}

	return &ListEnrollmentsResult{
		Enrollments: dtos,
		Page:        page.Page,
		PageSize:    page.Limit(),
	}, nil
}
