package course

import "context"

// Repository определяет операции хранения каталога курсов.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create добавляет курс в каталог.
	// Возвращает ErrCourseAlreadyExists при дубликате названия.
	Create(ctx context.Context, c *Course) error

	// GetByID возвращает курс по ID.
	// Возвращает ErrCourseNotFound, если курс не найден.
	GetByID(ctx context.Context, id string) (*Course, error)

	// Update обновляет данные курса.
	// Возвращает ErrCourseNotFound, если курс не найден.
	Update(ctx context.Context, c *Course) error

	// GetAll возвращает курсы каталога.
	GetAll(ctx context.Context, opts ListOptions) ([]*Course, error)

	// Exists проверяет существование курса по ID.
	Exists(ctx context.Context, id string) (bool, error)
}

// ListOptions содержит параметры фильтрации каталога.
type ListOptions struct {
	// Category - фильтр по категории (пустое значение - без фильтра).
	Category Category

	// ActiveOnly - только курсы, открытые для зачислений.
	ActiveOnly bool

	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		ActiveOnly: true,
		Limit:      100,
	}
}
