package command

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Регистрирует профиль студента. Структурная валидация входа выполняется
// декларативно; доменные правила (CPF, бразильский телефон) проверяются
// в доменном слое.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand содержит данные для регистрации студента.
type RegisterStudentCommand struct {
	// Name - полное имя.
	Name string `validate:"required,min=2,max=200"`

	// Email - адрес электронной почты (уникален в системе).
	Email string `validate:"required,email"`

	// Phone - телефон (опционально).
	Phone string `validate:"omitempty,min=10,max=20"`

	// CPF - бразильский налоговый номер (опционально).
	CPF string `validate:"omitempty,min=11,max=14"`

	// BirthDate - дата рождения (опционально).
	BirthDate *time.Time

	// Notes - заметки о студенте.
	Notes string `validate:"max=2000"`
}

// RegisterStudentResult содержит результат регистрации.
type RegisterStudentResult struct {
	// StudentID - ID созданного профиля.
	StudentID string

	// Status - статус профиля (всегда Active при создании).
	Status student.Status

	// RegisteredAt - время регистрации.
	RegisteredAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	log            *logger.Logger
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *RegisterStudentHandler {
	return &RegisterStudentHandler{
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		log:            log.With(logger.Component("register_student")),
	}
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (*RegisterStudentResult, error) {
	if err := h.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("register_student: validation failed: %w", err)
	}

	stud, err := student.NewStudent(student.NewStudentParams{
		ID:        uuid.NewString(),
		Name:      cmd.Name,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
		CPF:       cmd.CPF,
		BirthDate: cmd.BirthDate,
		Notes:     cmd.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := h.studentRepo.Create(ctx, stud); err != nil {
		return nil, err
	}

	h.log.Info("student registered",
		logger.StudentID(stud.ID),
		logger.String("email", stud.Email.String()),
	)

	_ = h.eventPublisher.Publish(shared.NewStudentRegisteredEvent(
		stud.ID, stud.Name, stud.Email.String(),
	))

	return &RegisterStudentResult{
		StudentID:    stud.ID,
		Status:       stud.Status,
		RegisteredAt: stud.RegisteredAt,
	}, nil
}
