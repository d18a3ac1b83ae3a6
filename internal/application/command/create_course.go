package command

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE COURSE COMMAND
// Добавляет курс в каталог. Название курса уникально.
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseCommand содержит данные для создания курса.
type CreateCourseCommand struct {
	// Title - название курса (уникально в каталоге).
	Title string `validate:"required,min=3,max=200"`

	// Description - описание курса.
	Description string `validate:"max=5000"`

	// DurationHours - длительность курса в часах.
	DurationHours int `validate:"required,gt=0"`

	// Category - категория курса.
	Category string `validate:"required"`

	// Instructor - имя инструктора.
	Instructor string `validate:"required,min=2,max=200"`

	// Prerequisites - предварительные требования (опционально).
	Prerequisites string `validate:"max=2000"`

	// MaxSeats - количество мест (0 = значение по умолчанию).
	MaxSeats int `validate:"gte=0"`

	// FeeCents - стоимость курса в центах.
	FeeCents int64 `validate:"gte=0"`
}

// CreateCourseResult содержит результат создания.
type CreateCourseResult struct {
	// CourseID - ID созданного курса.
	CourseID string

	// MaxSeats - итоговое количество мест.
	MaxSeats int

	// CreatedAt - время создания.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateCourseHandler handles the CreateCourseCommand.
type CreateCourseHandler struct {
	courseRepo     course.Repository
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	log            *logger.Logger
}

// NewCreateCourseHandler creates a new CreateCourseHandler.
func NewCreateCourseHandler(
	courseRepo course.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *CreateCourseHandler {
	return &CreateCourseHandler{
		courseRepo:     courseRepo,
		eventPublisher: eventPublisher,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            log.With(logger.Component("create_course")),
	}
}

// Handle executes the create course command.
func (h *CreateCourseHandler) Handle(ctx context.Context, cmd CreateCourseCommand) (*CreateCourseResult, error) {
	if err := h.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("create_course: validation failed: %w", err)
	}

	crs, err := course.NewCourse(course.NewCourseParams{
		ID:            uuid.NewString(),
		Title:         cmd.Title,
		Description:   cmd.Description,
		DurationHours: cmd.DurationHours,
		Category:      course.Category(cmd.Category),
		Instructor:    cmd.Instructor,
		Prerequisites: cmd.Prerequisites,
		MaxSeats:      cmd.MaxSeats,
		FeeCents:      cmd.FeeCents,
	})
	if err != nil {
		return nil, err
	}

	if err := h.courseRepo.Create(ctx, crs); err != nil {
		return nil, err
	}

	h.log.Info("course created",
		logger.CourseID(crs.ID),
		logger.String("title", crs.Title),
		logger.Int("max_seats", crs.MaxSeats),
	)

	_ = h.eventPublisher.Publish(shared.NewCourseCreatedEvent(
		crs.ID, crs.Title, crs.MaxSeats,
	))

	return &CreateCourseResult{
		CourseID:  crs.ID,
		MaxSeats:  crs.MaxSeats,
		CreatedAt: crs.CreatedAt,
	}, nil
}
