// Package enrollment содержит доменную модель зачисления студента на курс.
// Это ядро бизнес-логики системы - здесь нет внешних зависимостей.
package enrollment

import (
	"strings"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS (STATE MACHINE)
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус зачисления.
//
// Диаграмма переходов:
//
//	Pending --confirm--> Active
//	Pending --cancel---> Withdrawn
//	Active  --complete-> Completed   (требует progress == 100)
//	Active  --withdraw-> Withdrawn
//	Active  --fail-----> Failed
//
// Completed, Withdrawn и Failed - терминальные статусы: из них нет переходов.
type Status string

const (
	// StatusPending - место зарезервировано, зачисление ожидает подтверждения.
	StatusPending Status = "pending"
	// StatusActive - студент активно проходит курс.
	StatusActive Status = "active"
	// StatusCompleted - курс успешно завершён, выдан сертификат.
	StatusCompleted Status = "completed"
	// StatusWithdrawn - студент отказался от курса (до или во время обучения).
	StatusWithdrawn Status = "withdrawn"
	// StatusFailed - курс не пройден (явное решение инструктора).
	StatusFailed Status = "failed"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusWithdrawn, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true, если из статуса нет дальнейших переходов.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusWithdrawn, StatusFailed:
		return true
	default:
		return false
	}
}

// OccupiesSeat возвращает true, если зачисление занимает место в курсе.
// Места считаются только по статусам Pending и Active.
func (s Status) OccupiesSeat() bool {
	return s == StatusPending || s == StatusActive
}

// String возвращает строковое представление статуса.
func (s Status) String() string {
	return string(s)
}

// AllStatuses возвращает все корректные статусы в фиксированном порядке.
// Используется отчётами для разбивки по статусам.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusActive, StatusCompleted, StatusWithdrawn, StatusFailed}
}

// canTransition проверяет допустимость перехода между статусами.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusActive || to == StatusWithdrawn
	case StatusActive:
		return to == StatusCompleted || to == StatusWithdrawn || to == StatusFailed
	default:
		// Терминальные статусы: переходов нет.
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE & GRADES
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRecord - отметка посещаемости за одну календарную дату.
// Записи append-only: одна запись на дату в рамках зачисления.
type AttendanceRecord struct {
	// ClassDate - дата занятия (нормализована до полуночи UTC).
	ClassDate time.Time

	// Present - присутствовал ли студент.
	Present bool

	// RecordedAt - когда была сделана отметка.
	RecordedAt time.Time
}

// GradeRecord - оценка за одну контрольную работу. Записи append-only.
type GradeRecord struct {
	// Assessment - название контрольной работы.
	Assessment string

	// Score - балл по шкале 0-100.
	Score shared.Score

	// RecordedAt - когда была выставлена оценка.
	RecordedAt time.Time
}

// NormalizeClassDate приводит дату занятия к полуночи UTC.
// Две отметки в один календарный день считаются дубликатами независимо
// от времени суток и часового пояса источника.
func NormalizeClassDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ENROLLMENT
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment - связь одного студента с одним курсом и её жизненный цикл.
//
// Инвариант: на пару (StudentID, CourseID) в любой момент существует не более
// одного зачисления со статусом Pending или Active.
type Enrollment struct {
	// ID - уникальный идентификатор (UUID), присваивается при создании
	// и никогда не меняется.
	ID string

	// StudentID - внешняя ссылка на профиль студента.
	StudentID string

	// CourseID - внешняя ссылка на курс в каталоге.
	CourseID string

	// Status - текущий статус жизненного цикла.
	Status Status

	// Progress - процент прохождения курса [0,100]. Монотонно не убывает,
	// пока зачисление активно.
	Progress shared.Progress

	// Attendance - отметки посещаемости (append-only, одна на дату).
	Attendance []AttendanceRecord

	// Grades - оценки за контрольные работы (append-only).
	Grades []GradeRecord

	// AverageGrade - средняя оценка, пересчитывается при каждой новой оценке.
	// Производное поле: напрямую не устанавливается.
	AverageGrade float64

	// EnrolledAt - время создания зачисления.
	EnrolledAt time.Time

	// ExpectedCompletionAt - ожидаемый срок завершения курса.
	// Фоновая задача отменяет Pending-зачисления, просрочившие этот срок.
	ExpectedCompletionAt time.Time

	// CompletedAt - время перехода в Completed. Устанавливается ровно один
	// раз, только при успешном завершении.
	CompletedAt *time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY
// ══════════════════════════════════════════════════════════════════════════════

// NewEnrollmentParams содержит параметры для создания нового зачисления.
type NewEnrollmentParams struct {
	ID               string
	StudentID        string
	CourseID         string
	CompletionWindow time.Duration
}

// DefaultCompletionWindow - срок завершения курса по умолчанию (90 дней).
const DefaultCompletionWindow = 90 * 24 * time.Hour

// NewEnrollment создаёт новое зачисление в статусе Pending.
// Проверка дубликатов и вместимости курса выполняется на уровне команды
// внутри одной атомарной операции.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if !shared.IsValidID(params.ID) {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrInvalidID, "enrollment id must be a UUID")
	}
	if strings.TrimSpace(params.StudentID) == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrEmptyValue, "student id is required")
	}
	if strings.TrimSpace(params.CourseID) == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrEmptyValue, "course id is required")
	}

	window := params.CompletionWindow
	if window <= 0 {
		window = DefaultCompletionWindow
	}

	now := time.Now().UTC()

	return &Enrollment{
		ID:                   shared.NormalizeID(params.ID),
		StudentID:            params.StudentID,
		CourseID:             params.CourseID,
		Status:               StatusPending,
		Progress:             shared.MinProgress,
		Attendance:           nil,
		Grades:               nil,
		AverageGrade:         0,
		EnrolledAt:           now,
		ExpectedCompletionAt: now.Add(window),
		CompletedAt:          nil,
		UpdatedAt:            now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// transition выполняет переход в новый статус с проверкой допустимости.
func (e *Enrollment) transition(to Status) error {
	if !canTransition(e.Status, to) {
		return shared.ErrInvalidTransition
	}
	e.Status = to
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Confirm переводит зачисление из Pending в Active.
func (e *Enrollment) Confirm() error {
	if e.Status != StatusPending {
		return shared.ErrInvalidTransition
	}
	return e.transition(StatusActive)
}

// Cancel отменяет ожидающее зачисление (Pending -> Withdrawn).
func (e *Enrollment) Cancel() error {
	if e.Status != StatusPending {
		return shared.ErrInvalidTransition
	}
	return e.transition(StatusWithdrawn)
}

// Complete переводит зачисление из Active в Completed.
// Требует Progress == 100, иначе возвращает ErrIncompleteProgress.
// CompletedAt устанавливается ровно один раз.
func (e *Enrollment) Complete() error {
	if e.Status != StatusActive {
		return shared.ErrInvalidTransition
	}
	if !e.Progress.IsComplete() {
		return shared.ErrIncompleteProgress
	}
	if err := e.transition(StatusCompleted); err != nil {
		return err
	}
	completedAt := e.UpdatedAt
	e.CompletedAt = &completedAt
	return nil
}

// Withdraw переводит активное зачисление в Withdrawn.
func (e *Enrollment) Withdraw() error {
	if e.Status != StatusActive {
		return shared.ErrInvalidTransition
	}
	return e.transition(StatusWithdrawn)
}

// Fail переводит активное зачисление в Failed (явное действие инструктора).
func (e *Enrollment) Fail() error {
	if e.Status != StatusActive {
		return shared.ErrInvalidTransition
	}
	return e.transition(StatusFailed)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS TRACKING
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProgress обновляет процент прохождения курса.
// Требует статус Active. Новое значение должно быть в [0,100] и не меньше
// текущего: регресс прогресса запрещён.
//
// Достижение 100% НЕ переводит зачисление в Completed - завершение всегда
// явное действие через Complete.
func (e *Enrollment) UpdateProgress(newPercent int) (previous shared.Progress, err error) {
	if e.Status != StatusActive {
		return e.Progress, shared.ErrEnrollmentNotActive
	}

	p, err := shared.NewProgress(newPercent)
	if err != nil {
		return e.Progress, shared.ErrInvalidProgress
	}
	if p < e.Progress {
		return e.Progress, shared.ErrInvalidProgress
	}

	previous = e.Progress
	e.Progress = p
	e.UpdatedAt = time.Now().UTC()
	return previous, nil
}

// RecordAttendance добавляет отметку посещаемости.
// Требует статус Active. На одну календарную дату допускается одна отметка;
// повторная возвращает ErrDuplicateAttendance.
func (e *Enrollment) RecordAttendance(classDate time.Time, present bool) error {
	if e.Status != StatusActive {
		return shared.ErrEnrollmentNotActive
	}
	if classDate.IsZero() {
		return shared.NewDomainError("enrollment", "RecordAttendance", shared.ErrEmptyValue, "class date is required")
	}

	day := NormalizeClassDate(classDate)
	for _, rec := range e.Attendance {
		if rec.ClassDate.Equal(day) {
			return shared.ErrDuplicateAttendance
		}
	}

	now := time.Now().UTC()
	e.Attendance = append(e.Attendance, AttendanceRecord{
		ClassDate:  day,
		Present:    present,
		RecordedAt: now,
	})
	e.UpdatedAt = now
	return nil
}

// RecordGrade добавляет оценку за контрольную работу и пересчитывает
// среднюю оценку (невзвешенное арифметическое среднее всех оценок).
// Требует статус Active; балл должен быть в [0,100].
func (e *Enrollment) RecordGrade(assessment string, score float64) error {
	if e.Status != StatusActive {
		return shared.ErrEnrollmentNotActive
	}
	if strings.TrimSpace(assessment) == "" {
		return shared.NewDomainError("enrollment", "RecordGrade", shared.ErrEmptyValue, "assessment name is required")
	}

	s, err := shared.NewScore(score)
	if err != nil {
		return shared.ErrInvalidScore
	}

	now := time.Now().UTC()
	e.Grades = append(e.Grades, GradeRecord{
		Assessment: strings.TrimSpace(assessment),
		Score:      s,
		RecordedAt: now,
	})
	e.recalculateAverage()
	e.UpdatedAt = now
	return nil
}

// recalculateAverage пересчитывает производное поле AverageGrade.
func (e *Enrollment) recalculateAverage() {
	scores := make([]shared.Score, len(e.Grades))
	for i, g := range e.Grades {
		scores[i] = g.Score
	}
	e.AverageGrade = shared.AverageScore(scores)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRate возвращает долю посещённых занятий [0.0, 1.0].
func (e *Enrollment) AttendanceRate() float64 {
	if len(e.Attendance) == 0 {
		return 0
	}
	present := 0
	for _, rec := range e.Attendance {
		if rec.Present {
			present++
		}
	}
	return float64(present) / float64(len(e.Attendance))
}

// IsOverdue возвращает true, если ожидаемый срок завершения просрочен,
// а зачисление всё ещё ожидает подтверждения.
func (e *Enrollment) IsOverdue(now time.Time) bool {
	return e.Status == StatusPending && now.After(e.ExpectedCompletionAt)
}

// HasGrades возвращает true, если выставлена хотя бы одна оценка.
func (e *Enrollment) HasGrades() bool {
	return len(e.Grades) > 0
}
