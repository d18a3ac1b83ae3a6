// Package cli implements the interactive terminal interface.
// The operator navigates numbered menus; each action prompts for its
// inputs, calls an application handler and prints the outcome.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MENU MODEL
// ══════════════════════════════════════════════════════════════════════════════

// action is a single menu item bound to a handler method.
type action struct {
	label string
	run   func(ctx context.Context) error
}

// menu is a named list of actions.
type menu struct {
	title   string
	actions []action
}

// ══════════════════════════════════════════════════════════════════════════════
// APP
// ══════════════════════════════════════════════════════════════════════════════

// App runs the interactive menu loop.
type App struct {
	students    *StudentHandler
	courses     *CourseHandler
	enrollments *EnrollmentHandler
	reports     *ReportHandler
	prompt      *Prompter
	out         io.Writer
	log         *logger.Logger
}

// NewApp creates the CLI application.
func NewApp(
	students *StudentHandler,
	courses *CourseHandler,
	enrollments *EnrollmentHandler,
	reports *ReportHandler,
	prompt *Prompter,
	out io.Writer,
	log *logger.Logger,
) *App {
	return &App{
		students:    students,
		courses:     courses,
		enrollments: enrollments,
		reports:     reports,
		prompt:      prompt,
		out:         out,
		log:         log.With(logger.Component("cli")),
	}
}

// Run shows the top-level menu until the operator quits, the input
// stream ends, or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Training Management System")

	menus := []menu{
		{
			title: "Students",
			actions: []action{
				{"Register student", a.students.Register},
				{"List students", a.students.List},
				{"Search students", a.students.Search},
				{"Show student", a.students.Show},
				{"Deactivate student", a.students.Deactivate},
			},
		},
		{
			title: "Courses",
			actions: []action{
				{"Create course", a.courses.Create},
				{"List courses", a.courses.List},
				{"Deactivate course", a.courses.Deactivate},
			},
		},
		{
			title: "Enrollments & progress",
			actions: []action{
				{"Enroll student", a.enrollments.Enroll},
				{"Confirm / cancel / withdraw / fail", a.enrollments.Transition},
				{"Record attendance", a.enrollments.Attendance},
				{"Record grade", a.enrollments.Grade},
				{"Update progress", a.enrollments.Progress},
				{"Complete enrollment", a.enrollments.Complete},
				{"List enrollments", a.enrollments.List},
			},
		},
		{
			title: "Reports & certificates",
			actions: []action{
				{"Course report", a.reports.CourseStats},
				{"Verify certificate", a.reports.VerifyCertificate},
				{"Issue certificate", a.reports.IssueCertificate},
				{"Revoke certificate", a.reports.RevokeCertificate},
				{"Export enrollments to CSV", a.reports.ExportCSV},
				{"Recent activity", a.reports.RecentActivity},
				{"Activity for entity", a.reports.EntityActivity},
			},
		},
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(a.out)
		for i, m := range menus {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, m.title)
		}
		fmt.Fprintln(a.out, "  0. Quit")

		choice, err := a.prompt.ReadLine("Select")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch choice {
		case "0", "q", "quit", "exit":
			fmt.Fprintln(a.out, "Bye.")
			return nil
		case "1", "2", "3", "4":
			idx := int(choice[0] - '1')
			if err := a.runMenu(ctx, menus[idx]); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		default:
			fmt.Fprintln(a.out, "Unknown option.")
		}
	}
}

// runMenu shows one submenu until the operator goes back.
func (a *App) runMenu(ctx context.Context, m menu) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(a.out, "\n%s\n", m.title)
		for i, act := range m.actions {
			fmt.Fprintf(a.out, "  %d. %s\n", i+1, act.label)
		}
		fmt.Fprintln(a.out, "  0. Back")

		choice, err := a.prompt.ReadLine("Select")
		if err != nil {
			return err
		}
		if choice == "0" || choice == "b" || choice == "back" {
			return nil
		}

		idx := -1
		if len(choice) == 1 && choice[0] >= '1' && choice[0] <= '9' {
			idx = int(choice[0] - '1')
		}
		if idx < 0 || idx >= len(m.actions) {
			fmt.Fprintln(a.out, "Unknown option.")
			continue
		}

		if err := m.actions[idx].run(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return err
			}
			// Operational failures are reported and the menu continues.
			a.log.Error("action failed", logger.String("action", m.actions[idx].label), logger.Err(err))
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}
