package student

import "context"

// Repository определяет операции хранения профилей студентов.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create регистрирует нового студента.
	// Возвращает ErrStudentAlreadyExists при дубликате email или CPF.
	Create(ctx context.Context, s *Student) error

	// GetByID возвращает студента по ID.
	// Возвращает ErrStudentNotFound, если студент не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByEmail возвращает студента по адресу электронной почты.
	GetByEmail(ctx context.Context, email Email) (*Student, error)

	// Update обновляет профиль студента.
	Update(ctx context.Context, s *Student) error

	// GetAll возвращает студентов с фильтрацией по статусу.
	GetAll(ctx context.Context, opts ListOptions) ([]*Student, error)

	// Search выполняет поиск студентов по имени или email.
	Search(ctx context.Context, query string, opts ListOptions) ([]*Student, error)

	// Exists проверяет существование студента по ID.
	// Это предикат, который потребляет ядро зачислений.
	Exists(ctx context.Context, id string) (bool, error)
}

// ListOptions содержит параметры фильтрации реестра.
type ListOptions struct {
	// Status - фильтр по статусу (пустое значение - без фильтра).
	Status Status

	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: 100}
}
