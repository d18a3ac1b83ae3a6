// Package course содержит доменную модель каталога курсов.
// Ядро зачислений обращается к каталогу только за метаданными курса
// (вместимость, стоимость, активность).
package course

import (
	"strings"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Category определяет категорию курса.
type Category string

const (
	CategoryTechnology  Category = "technology"
	CategoryBusiness    Category = "business"
	CategoryDesign      Category = "design"
	CategoryMarketing   Category = "marketing"
	CategoryDataScience Category = "data_science"
	CategorySoftSkills  Category = "soft_skills"
	CategoryOther       Category = "other"
)

// IsValid проверяет, что категория корректна.
func (c Category) IsValid() bool {
	switch c {
	case CategoryTechnology, CategoryBusiness, CategoryDesign, CategoryMarketing,
		CategoryDataScience, CategorySoftSkills, CategoryOther:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление категории.
func (c Category) String() string {
	return string(c)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course - курс в каталоге обучения.
type Course struct {
	// ID - уникальный идентификатор (UUID).
	ID string

	// Title - название курса, уникально в каталоге.
	Title string

	// Description - описание курса.
	Description string

	// DurationHours - длительность курса в академических часах.
	DurationHours int

	// Category - категория курса.
	Category Category

	// Instructor - имя ведущего инструктора.
	Instructor string

	// Prerequisites - требования к слушателям (свободный текст).
	Prerequisites string

	// MaxSeats - максимальное количество мест.
	MaxSeats int

	// Fee - стоимость курса. Система только фиксирует сумму,
	// платежи не обрабатываются.
	Fee shared.Money

	// IsActive - открыт ли курс для новых зачислений.
	IsActive bool

	// CreatedAt - время добавления в каталог.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// NewCourseParams содержит параметры создания курса.
type NewCourseParams struct {
	ID            string
	Title         string
	Description   string
	DurationHours int
	Category      Category
	Instructor    string
	Prerequisites string
	MaxSeats      int
	FeeCents      int64
}

// DefaultMaxSeats - вместимость курса по умолчанию.
const DefaultMaxSeats = 30

// NewCourse создаёт новый курс с валидацией всех полей.
func NewCourse(params NewCourseParams) (*Course, error) {
	if !shared.IsValidID(params.ID) {
		return nil, shared.NewDomainError("course", "New", shared.ErrInvalidID, "course id must be a UUID")
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, shared.NewDomainError("course", "New", shared.ErrEmptyValue, "course title is required")
	}

	if params.DurationHours <= 0 {
		return nil, shared.ErrInvalidDuration
	}

	category := params.Category
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("course", "New", shared.ErrInvalidInput, "unknown course category")
	}

	maxSeats := params.MaxSeats
	if maxSeats == 0 {
		maxSeats = DefaultMaxSeats
	}
	if maxSeats <= 0 {
		return nil, shared.ErrInvalidSeatCount
	}

	fee, err := shared.NewMoney(params.FeeCents)
	if err != nil {
		return nil, shared.ErrInvalidFee
	}

	now := time.Now().UTC()

	return &Course{
		ID:            shared.NormalizeID(params.ID),
		Title:         title,
		Description:   strings.TrimSpace(params.Description),
		DurationHours: params.DurationHours,
		Category:      category,
		Instructor:    strings.TrimSpace(params.Instructor),
		Prerequisites: strings.TrimSpace(params.Prerequisites),
		MaxSeats:      maxSeats,
		Fee:           fee,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Deactivate закрывает курс для новых зачислений.
// Существующие зачисления продолжают жить своим жизненным циклом.
func (c *Course) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// CAPACITY SNAPSHOT (READ VIEW)
// ══════════════════════════════════════════════════════════════════════════════

// CapacitySnapshot - мгновенный снимок занятости курса.
// Не хранится: вычисляется по требованию из коллекции зачислений,
// отдельный изменяемый счётчик мест не ведётся.
type CapacitySnapshot struct {
	// CourseID - курс, к которому относится снимок.
	CourseID string

	// MaxSeats - вместимость курса.
	MaxSeats int

	// ActiveCount - количество зачислений в статусах Pending и Active.
	ActiveCount int

	// TakenAt - момент вычисления снимка.
	TakenAt time.Time
}

// HasSeat возвращает true, если в курсе есть хотя бы одно свободное место.
func (s CapacitySnapshot) HasSeat() bool {
	return s.ActiveCount < s.MaxSeats
}

// AvailableSeats возвращает количество свободных мест (не меньше нуля).
func (s CapacitySnapshot) AvailableSeats() int {
	if s.ActiveCount >= s.MaxSeats {
		return 0
	}
	return s.MaxSeats - s.ActiveCount
}

// Utilization возвращает заполненность курса [0.0, 1.0].
// Значение может превысить 1.0 только при ошибке данных: инвариант системы -
// ActiveCount никогда не больше MaxSeats.
func (s CapacitySnapshot) Utilization() float64 {
	if s.MaxSeats == 0 {
		return 0
	}
	return float64(s.ActiveCount) / float64(s.MaxSeats)
}

// NewCapacitySnapshot формирует снимок занятости курса.
func NewCapacitySnapshot(courseID string, maxSeats, activeCount int) CapacitySnapshot {
	return CapacitySnapshot{
		CourseID:    courseID,
		MaxSeats:    maxSeats,
		ActiveCount: activeCount,
		TakenAt:     time.Now().UTC(),
	}
}
