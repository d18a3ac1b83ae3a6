// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE STATS QUERY
// Собирает сводную статистику курса: занятость мест, разбивку по статусам,
// долю завершивших, средний прогресс и оценки. Статистика агрегируется
// по живым данным; кэш - необязательная оптимизация.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseStatsQuery содержит параметры запроса статистики.
type GetCourseStatsQuery struct {
	// CourseID - ID курса.
	CourseID string

	// BypassCache - пересчитать статистику, игнорируя кэш.
	BypassCache bool
}

// Validate проверяет корректность параметров запроса.
func (q GetCourseStatsQuery) Validate() error {
	if q.CourseID == "" {
		return errors.New("get_course_stats: course_id is required")
	}
	return nil
}

// CourseStatsDTO - сводная статистика одного курса.
type CourseStatsDTO struct {
	// CourseID - ID курса.
	CourseID string `json:"course_id"`

	// Title - название курса.
	Title string `json:"title"`

	// Instructor - имя инструктора.
	Instructor string `json:"instructor"`

	// MaxSeats - вместимость курса.
	MaxSeats int `json:"max_seats"`

	// SeatsTaken - занятые места (Pending + Active).
	SeatsTaken int `json:"seats_taken"`

	// AvailableSeats - свободные места.
	AvailableSeats int `json:"available_seats"`

	// Utilization - доля занятых мест [0.0, 1.0].
	Utilization float64 `json:"utilization"`

	// StatusCounts - разбивка зачислений по статусам.
	StatusCounts map[string]int `json:"status_counts"`

	// TotalEnrollments - суммарное количество зачислений за всё время.
	TotalEnrollments int `json:"total_enrollments"`

	// CompletionRate - доля завершивших среди всех терминальных зачислений.
	CompletionRate float64 `json:"completion_rate"`

	// AverageProgress - средний прогресс активных зачислений.
	AverageProgress float64 `json:"average_progress"`

	// AverageGrade - средняя оценка по завершённым зачислениям с оценками.
	AverageGrade float64 `json:"average_grade"`

	// AverageAttendanceRate - средняя посещаемость по зачислениям с отметками.
	AverageAttendanceRate float64 `json:"average_attendance_rate"`

	// GeneratedAt - время расчёта статистики.
	GeneratedAt time.Time `json:"generated_at"`
}

// StatsCache кэширует рассчитанную статистику курса.
// Сбои кэша не влияют на результат запроса.
type StatsCache interface {
	// Get возвращает закэшированную статистику, если она есть и свежа.
	Get(ctx context.Context, courseID string) (*CourseStatsDTO, bool)

	// Set сохраняет рассчитанную статистику.
	Set(ctx context.Context, stats *CourseStatsDTO)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseStatsHandler handles the GetCourseStatsQuery.
type GetCourseStatsHandler struct {
	courseRepo     course.Repository
	enrollmentRepo enrollment.Repository
	cache          StatsCache
	retrier        *retry.Retrier
	log            *logger.Logger
}

// NewGetCourseStatsHandler creates a new GetCourseStatsHandler.
// cache may be nil, in which case stats are always recomputed.
func NewGetCourseStatsHandler(
	courseRepo course.Repository,
	enrollmentRepo enrollment.Repository,
	cache StatsCache,
	log *logger.Logger,
) *GetCourseStatsHandler {
	return &GetCourseStatsHandler{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		cache:          cache,
		retrier:        retry.StorageReadRetrier(shared.IsTransient),
		log:            log.With(logger.Component("get_course_stats")),
	}
}

// Handle executes the get course stats query.
func (h *GetCourseStatsHandler) Handle(ctx context.Context, q GetCourseStatsQuery) (*CourseStatsDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil && !q.BypassCache {
		if cached, ok := h.cache.Get(ctx, q.CourseID); ok {
			return cached, nil
		}
	}

	stats, err := retry.DoWithData(ctx, h.retrier, func(ctx context.Context) (*CourseStatsDTO, error) {
		return h.compute(ctx, q.CourseID)
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Set(ctx, stats)
	}
	return stats, nil
}

// compute рассчитывает статистику по живым данным хранилища.
func (h *GetCourseStatsHandler) compute(ctx context.Context, courseID string) (*CourseStatsDTO, error) {
	crs, err := h.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollments, err := h.enrollmentRepo.GetByCourse(ctx, courseID, enrollment.ListOptions{Limit: 0})
	if err != nil {
		return nil, err
	}

	statusCounts := make(map[string]int, len(enrollment.AllStatuses()))
	for _, s := range enrollment.AllStatuses() {
		statusCounts[s.String()] = 0
	}

	var (
		seatsTaken     int
		terminal       int
		completed      int
		activeCount    int
		progressSum    float64
		gradedCount    int
		gradeSum       float64
		attendedCount  int
		attendanceSum  float64
	)

	for _, enr := range enrollments {
		statusCounts[enr.Status.String()]++
		if enr.Status.OccupiesSeat() {
			seatsTaken++
		}
		if enr.Status.IsTerminal() {
			terminal++
			if enr.Status == enrollment.StatusCompleted {
				completed++
			}
		}
		if enr.Status == enrollment.StatusActive {
			activeCount++
			progressSum += float64(enr.Progress.Int())
		}
		if enr.Status == enrollment.StatusCompleted && enr.HasGrades() {
			gradedCount++
			gradeSum += enr.AverageGrade
		}
		if len(enr.Attendance) > 0 {
			attendedCount++
			attendanceSum += enr.AttendanceRate()
		}
	}

	snapshot := course.NewCapacitySnapshot(crs.ID, crs.MaxSeats, seatsTaken)

	stats := &CourseStatsDTO{
		CourseID:         crs.ID,
		Title:            crs.Title,
		Instructor:       crs.Instructor,
		MaxSeats:         crs.MaxSeats,
		SeatsTaken:       seatsTaken,
		AvailableSeats:   snapshot.AvailableSeats(),
		Utilization:      snapshot.Utilization(),
		StatusCounts:     statusCounts,
		TotalEnrollments: len(enrollments),
		GeneratedAt:      time.Now().UTC(),
	}
	if terminal > 0 {
		stats.CompletionRate = float64(completed) / float64(terminal)
	}
	if activeCount > 0 {
		stats.AverageProgress = progressSum / float64(activeCount)
	}
	if gradedCount > 0 {
		stats.AverageGrade = gradeSum / float64(gradedCount)
	}
	if attendedCount > 0 {
		stats.AverageAttendanceRate = attendanceSum / float64(attendedCount)
	}

	return stats, nil
}
