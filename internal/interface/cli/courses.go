package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/interface/cli/presenter"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// CourseHandler handles the course catalog menu.
type CourseHandler struct {
	create     *command.CreateCourseHandler
	courseRepo course.Repository
	prompt     *Prompter
	out        io.Writer
	log        *logger.Logger
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(
	create *command.CreateCourseHandler,
	courseRepo course.Repository,
	prompt *Prompter,
	out io.Writer,
	log *logger.Logger,
) *CourseHandler {
	return &CourseHandler{
		create:     create,
		courseRepo: courseRepo,
		prompt:     prompt,
		out:        out,
		log:        log.With(logger.Component("cli_courses")),
	}
}

// Create prompts for course details and adds the course to the catalog.
func (h *CourseHandler) Create(ctx context.Context) error {
	title, err := h.prompt.ReadRequired("Title")
	if err != nil {
		return err
	}
	description, err := h.prompt.ReadLine("Description [skip]")
	if err != nil {
		return err
	}
	hours, err := h.prompt.ReadInt("Duration (hours)", 40)
	if err != nil {
		return err
	}
	category, err := h.prompt.Choose("Category",
		"technology", "business", "design", "marketing", "data_science", "soft_skills", "other")
	if err != nil {
		return err
	}
	instructor, err := h.prompt.ReadRequired("Instructor")
	if err != nil {
		return err
	}
	prerequisites, err := h.prompt.ReadLine("Prerequisites [skip]")
	if err != nil {
		return err
	}
	maxSeats, err := h.prompt.ReadInt("Max seats", 30)
	if err != nil {
		return err
	}
	feeCents, err := h.prompt.ReadMoney("Fee")
	if err != nil {
		return err
	}

	result, err := h.create.Handle(ctx, command.CreateCourseCommand{
		Title:         title,
		Description:   description,
		DurationHours: hours,
		Category:      category,
		Instructor:    instructor,
		Prerequisites: prerequisites,
		MaxSeats:      maxSeats,
		FeeCents:      feeCents,
	})
	if err != nil {
		if errors.Is(err, shared.ErrCourseAlreadyExists) {
			fmt.Fprintln(h.out, "A course with this title already exists.")
			return nil
		}
		return err
	}

	fmt.Fprintf(h.out, "Course created: %s (%d seats)\n", result.CourseID, result.MaxSeats)
	return nil
}

// List prints the catalog, optionally filtered by category.
func (h *CourseHandler) List(ctx context.Context) error {
	category, err := h.prompt.Choose("Category filter",
		"all", "technology", "business", "design", "marketing", "data_science", "soft_skills", "other")
	if err != nil {
		return err
	}
	activeOnly, err := h.prompt.ReadBool("Active courses only")
	if err != nil {
		return err
	}

	opts := course.ListOptions{ActiveOnly: activeOnly}
	if category != "all" {
		opts.Category = course.Category(category)
	}
	courses, err := h.courseRepo.GetAll(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}

	fmt.Fprint(h.out, presenter.CourseTable(courses))
	return nil
}

// Deactivate closes a course for new enrollments. Existing enrollments
// continue unaffected.
func (h *CourseHandler) Deactivate(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Course ID")
	if err != nil {
		return err
	}

	c, err := h.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrCourseNotFound) {
			fmt.Fprintln(h.out, "Course not found.")
			return nil
		}
		return err
	}

	confirm, err := h.prompt.ReadBool(fmt.Sprintf("Close %q for new enrollments", c.Title))
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Fprintln(h.out, "Cancelled.")
		return nil
	}

	c.Deactivate()
	if err := h.courseRepo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to deactivate course: %w", err)
	}

	h.log.Info("course deactivated", logger.String("course_id", c.ID))
	fmt.Fprintln(h.out, "Course closed for new enrollments.")
	return nil
}
