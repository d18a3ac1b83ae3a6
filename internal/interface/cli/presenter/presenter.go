// Package presenter formats data for terminal display.
// Presenters handle the conversion from domain objects and query DTOs
// to aligned text tables and cards printed by the CLI.
package presenter

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/student"
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
	"github.com/Hbini/training-management-system/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// StudentTable renders a list of students as an aligned table.
func StudentTable(students []*student.Student) string {
	if len(students) == 0 {
		return "No students found.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tREGISTERED")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(s.ID), s.Name, s.Email, s.Status, timeutil.FormatDate(s.RegisteredAt))
	}
	w.Flush()
	fmt.Fprintf(&b, "\n%d student(s)\n", len(students))
	return b.String()
}

// StudentCard renders a single student profile.
func StudentCard(s *student.Student) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student %s\n", s.ID)
	fmt.Fprintf(&b, "  Name:       %s\n", s.Name)
	fmt.Fprintf(&b, "  Email:      %s\n", s.Email)
	if s.Phone != "" {
		fmt.Fprintf(&b, "  Phone:      %s\n", s.Phone)
	}
	if s.CPF != "" {
		fmt.Fprintf(&b, "  CPF:        %s\n", s.CPF)
	}
	if s.BirthDate != nil {
		fmt.Fprintf(&b, "  Birth date: %s\n", timeutil.FormatDate(*s.BirthDate))
	}
	fmt.Fprintf(&b, "  Status:     %s\n", s.Status)
	if s.Notes != "" {
		fmt.Fprintf(&b, "  Notes:      %s\n", s.Notes)
	}
	fmt.Fprintf(&b, "  Registered: %s\n", timeutil.FormatDateTime(s.RegisteredAt))
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

// CourseTable renders the course catalog as an aligned table.
func CourseTable(courses []*course.Course) string {
	if len(courses) == 0 {
		return "No courses found.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tINSTRUCTOR\tHOURS\tSEATS\tFEE\tACTIVE")
	for _, c := range courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			shortID(c.ID), c.Title, c.Category, c.Instructor,
			c.DurationHours, c.MaxSeats, c.Fee, yesNo(c.IsActive))
	}
	w.Flush()
	fmt.Fprintf(&b, "\n%d course(s)\n", len(courses))
	return b.String()
}

// CourseStats renders the occupancy and performance report for a course.
func CourseStats(stats *query.CourseStatsDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course report: %s\n", stats.Title)
	fmt.Fprintf(&b, "  Instructor:        %s\n", stats.Instructor)
	fmt.Fprintf(&b, "  Seats:             %d/%d taken (%d available, %.1f%% utilization)\n",
		stats.SeatsTaken, stats.MaxSeats, stats.AvailableSeats, stats.Utilization*100)
	fmt.Fprintf(&b, "  Total enrollments: %d\n", stats.TotalEnrollments)
	if len(stats.StatusCounts) > 0 {
		fmt.Fprintf(&b, "  By status:\n")
		for _, status := range []string{"pending", "active", "completed", "withdrawn", "failed"} {
			if n, ok := stats.StatusCounts[status]; ok && n > 0 {
				fmt.Fprintf(&b, "    %-10s %d\n", status, n)
			}
		}
	}
	fmt.Fprintf(&b, "  Completion rate:   %.1f%%\n", stats.CompletionRate*100)
	fmt.Fprintf(&b, "  Average progress:  %.1f%%\n", stats.AverageProgress)
	fmt.Fprintf(&b, "  Average grade:     %.1f\n", stats.AverageGrade)
	fmt.Fprintf(&b, "  Attendance rate:   %.1f%%\n", stats.AverageAttendanceRate*100)
	fmt.Fprintf(&b, "  Generated:         %s\n", timeutil.FormatDateTime(stats.GeneratedAt))
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentTable renders a page of enrollments as an aligned table.
func EnrollmentTable(enrollments []query.EnrollmentDTO) string {
	if len(enrollments) == 0 {
		return "No enrollments found.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT\tCOURSE\tSTATUS\tPROGRESS\tGRADE\tATTEND\tENROLLED")
	for _, e := range enrollments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%s\t%s\n",
			shortID(e.ID), shortID(e.StudentID), shortID(e.CourseID), e.Status,
			e.ProgressPercent,
			formatGrade(e.AverageGrade, e.GradeCount),
			formatRate(e.AttendanceRate, e.AttendanceCount),
			timeutil.FormatDate(e.EnrolledAt))
	}
	w.Flush()
	fmt.Fprintf(&b, "\n%d enrollment(s) on this page\n", len(enrollments))
	return b.String()
}

// EnrollmentCard renders one enrollment with its academic record.
func EnrollmentCard(e query.EnrollmentDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enrollment %s\n", e.ID)
	fmt.Fprintf(&b, "  Student:    %s\n", e.StudentID)
	fmt.Fprintf(&b, "  Course:     %s\n", e.CourseID)
	fmt.Fprintf(&b, "  Status:     %s\n", e.Status)
	fmt.Fprintf(&b, "  Progress:   %d%%\n", e.ProgressPercent)
	fmt.Fprintf(&b, "  Grades:     %s (%d recorded)\n", formatGrade(e.AverageGrade, e.GradeCount), e.GradeCount)
	fmt.Fprintf(&b, "  Attendance: %s (%d classes)\n", formatRate(e.AttendanceRate, e.AttendanceCount), e.AttendanceCount)
	fmt.Fprintf(&b, "  Enrolled:   %s\n", timeutil.FormatDateTime(e.EnrolledAt))
	fmt.Fprintf(&b, "  Deadline:   %s\n", timeutil.FormatDate(e.ExpectedCompletionAt))
	if e.CompletedAt != nil {
		fmt.Fprintf(&b, "  Completed:  %s\n", timeutil.FormatDateTime(*e.CompletedAt))
	}
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATES
// ══════════════════════════════════════════════════════════════════════════════

// Verification renders the outcome of a certificate verification check.
func Verification(v *query.VerificationDTO) string {
	var b strings.Builder
	if !v.Found {
		fmt.Fprintln(&b, "Certificate NOT FOUND. The code does not match any issued certificate.")
		return b.String()
	}
	if v.Valid {
		fmt.Fprintln(&b, "Certificate VALID.")
	} else {
		fmt.Fprintln(&b, "Certificate REVOKED.")
	}
	fmt.Fprintf(&b, "  Number:     %s\n", v.Number)
	fmt.Fprintf(&b, "  Enrollment: %s\n", v.EnrollmentID)
	fmt.Fprintf(&b, "  Issued by:  %s\n", v.IssuedBy)
	if v.IssuedAt != nil {
		fmt.Fprintf(&b, "  Issued at:  %s\n", timeutil.FormatDateTime(*v.IssuedAt))
	}
	if v.Revoked && v.RevokedReason != "" {
		fmt.Fprintf(&b, "  Reason:     %s\n", v.RevokedReason)
	}
	fmt.Fprintf(&b, "  Checked:    %s\n", timeutil.FormatDateTime(v.CheckedAt))
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG
// ══════════════════════════════════════════════════════════════════════════════

// ActivityTable renders audit log entries, newest first.
func ActivityTable(entries []audit.Entry) string {
	if len(entries) == 0 {
		return "No activity recorded.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tEVENT\tENTITY\tACTOR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.OccurredAt.Format(time.DateTime), e.EventType, shortID(e.AggregateID), e.Actor)
	}
	w.Flush()
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatGrade(avg float64, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", avg)
}

func formatRate(rate float64, count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", rate*100)
}
