package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/internal/interface/cli/presenter"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// StudentHandler handles the student registry menu.
type StudentHandler struct {
	register    *command.RegisterStudentHandler
	studentRepo student.Repository
	prompt      *Prompter
	out         io.Writer
	log         *logger.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(
	register *command.RegisterStudentHandler,
	studentRepo student.Repository,
	prompt *Prompter,
	out io.Writer,
	log *logger.Logger,
) *StudentHandler {
	return &StudentHandler{
		register:    register,
		studentRepo: studentRepo,
		prompt:      prompt,
		out:         out,
		log:         log.With(logger.Component("cli_students")),
	}
}

// Register prompts for a student profile and registers it.
func (h *StudentHandler) Register(ctx context.Context) error {
	name, err := h.prompt.ReadRequired("Full name")
	if err != nil {
		return err
	}
	email, err := h.prompt.ReadRequired("Email")
	if err != nil {
		return err
	}
	phone, err := h.prompt.ReadLine("Phone [skip]")
	if err != nil {
		return err
	}
	cpf, err := h.prompt.ReadLine("CPF [skip]")
	if err != nil {
		return err
	}
	birthDate, err := h.prompt.ReadOptionalDate("Birth date")
	if err != nil {
		return err
	}
	notes, err := h.prompt.ReadLine("Notes [skip]")
	if err != nil {
		return err
	}

	result, err := h.register.Handle(ctx, command.RegisterStudentCommand{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CPF:       cpf,
		BirthDate: birthDate,
		Notes:     notes,
	})
	if err != nil {
		if errors.Is(err, shared.ErrStudentAlreadyExists) {
			fmt.Fprintln(h.out, "A student with this email or CPF is already registered.")
			return nil
		}
		return err
	}

	fmt.Fprintf(h.out, "Student registered: %s\n", result.StudentID)
	return nil
}

// List prints all students, optionally filtered by status.
func (h *StudentHandler) List(ctx context.Context) error {
	status, err := h.prompt.Choose("Status filter", "all", "active", "inactive", "suspended", "graduated")
	if err != nil {
		return err
	}

	opts := student.ListOptions{}
	if status != "all" {
		opts.Status = student.Status(status)
	}
	students, err := h.studentRepo.GetAll(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	fmt.Fprint(h.out, presenter.StudentTable(students))
	return nil
}

// Search finds students by a name or email fragment.
func (h *StudentHandler) Search(ctx context.Context) error {
	term, err := h.prompt.ReadRequired("Search term")
	if err != nil {
		return err
	}

	students, err := h.studentRepo.Search(ctx, term, student.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to search students: %w", err)
	}

	fmt.Fprint(h.out, presenter.StudentTable(students))
	return nil
}

// Show prints one student profile by ID.
func (h *StudentHandler) Show(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Student ID")
	if err != nil {
		return err
	}

	s, err := h.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrStudentNotFound) {
			fmt.Fprintln(h.out, "Student not found.")
			return nil
		}
		return err
	}

	fmt.Fprint(h.out, presenter.StudentCard(s))
	return nil
}

// Deactivate soft-deletes a student profile. Enrollment history is kept.
func (h *StudentHandler) Deactivate(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Student ID")
	if err != nil {
		return err
	}

	s, err := h.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrStudentNotFound) {
			fmt.Fprintln(h.out, "Student not found.")
			return nil
		}
		return err
	}

	confirm, err := h.prompt.ReadBool(fmt.Sprintf("Deactivate %s", s.Name))
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Fprintln(h.out, "Cancelled.")
		return nil
	}

	s.Deactivate()
	if err := h.studentRepo.Update(ctx, s); err != nil {
		return fmt.Errorf("failed to deactivate student: %w", err)
	}

	h.log.Info("student deactivated", logger.String("student_id", s.ID))
	fmt.Fprintln(h.out, "Student deactivated.")
	return nil
}
