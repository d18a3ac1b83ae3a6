package enrollment

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения зачислений.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт новое зачисление.
	// Возвращает ErrDuplicateEnrollment, если на пару (студент, курс) уже
	// существует зачисление со статусом Pending или Active.
	Create(ctx context.Context, e *Enrollment) error

	// GetByID возвращает зачисление по ID.
	// Возвращает ErrEnrollmentNotFound, если зачисление не найдено.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// Update сохраняет изменённое зачисление (статус, прогресс, посещаемость,
	// оценки). Возвращает ErrEnrollmentNotFound, если зачисление не найдено.
	Update(ctx context.Context, e *Enrollment) error

	// ─────────────────────────────────────────────────────────────────────────
	// Capacity & Uniqueness
	// ─────────────────────────────────────────────────────────────────────────

	// CountSeatsTaken возвращает количество зачислений курса в статусах
	// Pending и Active. Вместимость всегда пересчитывается по этой выборке,
	// отдельный счётчик мест не ведётся.
	CountSeatsTaken(ctx context.Context, courseID string) (int, error)

	// ExistsActivePair проверяет, есть ли у студента зачисление на курс
	// в статусе Pending или Active.
	ExistsActivePair(ctx context.Context, studentID, courseID string) (bool, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Listing
	// ─────────────────────────────────────────────────────────────────────────

	// GetByCourse возвращает зачисления курса.
	GetByCourse(ctx context.Context, courseID string, opts ListOptions) ([]*Enrollment, error)

	// GetByStudent возвращает зачисления студента.
	GetByStudent(ctx context.Context, studentID string, opts ListOptions) ([]*Enrollment, error)

	// GetAll возвращает все зачисления с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Enrollment, error)

	// CountByStatus возвращает количество зачислений курса по каждому статусу.
	CountByStatus(ctx context.Context, courseID string) (map[Status]int, error)

	// FindOverduePending находит Pending-зачисления, чей ожидаемый срок
	// завершения раньше указанного момента. Используется фоновой задачей.
	FindOverduePending(ctx context.Context, before time.Time) ([]*Enrollment, error)
}

// Atomic выполняет функцию в границах одной атомарной операции хранилища.
//
// Двухшаговые последовательности ядра обязаны проходить через WithinCourse:
//   - проверка вместимости + создание зачисления;
//   - завершение зачисления + выдача сертификата.
//
// Реализация на PostgreSQL использует транзакцию с advisory-блокировкой
// по курсу, реализация в памяти - мьютекс на курс. Конкурентные вызовы
// по одному курсу сериализуются, по разным курсам не блокируют друг друга.
type Atomic interface {
	// WithinCourse выполняет fn атомарно, сериализуя операции по курсу.
	// Если fn возвращает ошибку, все изменения внутри fn откатываются.
	WithinCourse(ctx context.Context, courseID string, fn func(ctx context.Context) error) error
}

// ListOptions содержит параметры пагинации и фильтрации.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// Status - фильтр по статусу (пустое значение - без фильтра).
	Status Status
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset: 0,
		Limit:  100,
	}
}

// WithStatus устанавливает фильтр по статусу.
func (o ListOptions) WithStatus(s Status) ListOptions {
	o.Status = s
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}
