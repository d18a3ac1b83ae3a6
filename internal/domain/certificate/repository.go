package certificate

import "context"

// Repository определяет операции хранения сертификатов.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create сохраняет новый сертификат.
	// Возвращает ErrAlreadyCertified, если для зачисления уже есть сертификат,
	// и ErrDuplicateCode при коллизии проверочного кода (уникальный индекс).
	Create(ctx context.Context, c *Certificate) error

	// GetByID возвращает сертификат по ID.
	// Возвращает ErrCertificateNotFound, если сертификат не найден.
	GetByID(ctx context.Context, id string) (*Certificate, error)

	// GetByEnrollment возвращает сертификат зачисления.
	// Возвращает ErrCertificateNotFound, если сертификат не выдавался.
	GetByEnrollment(ctx context.Context, enrollmentID string) (*Certificate, error)

	// GetByCodeDigest выполняет точный поиск по дайджесту проверочного кода.
	// Возвращает ErrCertificateNotFound при отсутствии совпадения.
	GetByCodeDigest(ctx context.Context, digest string) (*Certificate, error)

	// Update сохраняет смену статуса (отзыв). Остальные поля неизменяемы.
	Update(ctx context.Context, c *Certificate) error

	// NextSequence возвращает следующий порядковый номер для
	// человекочитаемого номера сертификата.
	NextSequence(ctx context.Context) (int64, error)

	// Count возвращает общее количество выданных сертификатов.
	Count(ctx context.Context) (int, error)
}
