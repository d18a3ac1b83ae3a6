package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Hbini/training-management-system/internal/application/command"
	"github.com/Hbini/training-management-system/internal/application/query"
	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
	"github.com/Hbini/training-management-system/internal/interface/cli/presenter"
	"github.com/Hbini/training-management-system/pkg/logger"
	"github.com/Hbini/training-management-system/pkg/timeutil"
)

// ReportHandler handles the reports and certificates menu.
type ReportHandler struct {
	stats     *query.GetCourseStatsHandler
	verify    *query.VerifyCertificateHandler
	export    *query.ExportEnrollmentsHandler
	issue     *command.IssueCertificateHandler
	revoke    *command.RevokeCertificateHandler
	auditRepo audit.Repository
	actor     shared.Actor
	prompt    *Prompter
	out       io.Writer
	log       *logger.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	stats *query.GetCourseStatsHandler,
	verify *query.VerifyCertificateHandler,
	export *query.ExportEnrollmentsHandler,
	issue *command.IssueCertificateHandler,
	revoke *command.RevokeCertificateHandler,
	auditRepo audit.Repository,
	actor shared.Actor,
	prompt *Prompter,
	out io.Writer,
	log *logger.Logger,
) *ReportHandler {
	return &ReportHandler{
		stats:     stats,
		verify:    verify,
		export:    export,
		issue:     issue,
		revoke:    revoke,
		auditRepo: auditRepo,
		actor:     actor,
		prompt:    prompt,
		out:       out,
		log:       log.With(logger.Component("cli_reports")),
	}
}

// CourseStats prints the occupancy and performance report for one course.
func (h *ReportHandler) CourseStats(ctx context.Context) error {
	courseID, err := h.prompt.ReadRequired("Course ID")
	if err != nil {
		return err
	}

	stats, err := h.stats.Handle(ctx, query.GetCourseStatsQuery{CourseID: courseID})
	if err != nil {
		if errors.Is(err, shared.ErrCourseNotFound) {
			fmt.Fprintln(h.out, "Course not found.")
			return nil
		}
		return err
	}

	fmt.Fprint(h.out, presenter.CourseStats(stats))
	return nil
}

// VerifyCertificate checks a verification code against issued certificates.
func (h *ReportHandler) VerifyCertificate(ctx context.Context) error {
	code, err := h.prompt.ReadRequired("Verification code")
	if err != nil {
		return err
	}

	result, err := h.verify.Handle(ctx, query.VerifyCertificateQuery{Code: code})
	if err != nil {
		return err
	}

	fmt.Fprint(h.out, presenter.Verification(result))
	return nil
}

// IssueCertificate issues (or re-issues idempotently) a certificate for
// a completed enrollment.
func (h *ReportHandler) IssueCertificate(ctx context.Context) error {
	enrollmentID, err := h.prompt.ReadRequired("Enrollment ID")
	if err != nil {
		return err
	}
	issuedBy, err := h.prompt.ReadLine("Issued by [system]")
	if err != nil {
		return err
	}

	result, err := h.issue.Handle(ctx, command.IssueCertificateCommand{
		EnrollmentID: enrollmentID,
		IssuedBy:     issuedBy,
		Actor:        h.actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrEnrollmentNotFound):
			fmt.Fprintln(h.out, "Enrollment not found.")
		case errors.Is(err, shared.ErrEnrollmentNotComplete):
			fmt.Fprintln(h.out, "Certificates are issued for completed enrollments only.")
		default:
			return err
		}
		return nil
	}

	if result.AlreadyIssued {
		fmt.Fprintf(h.out, "Certificate %s was already issued. The verification code cannot be shown again.\n", result.Number)
		return nil
	}

	fmt.Fprintf(h.out, "Certificate %s issued.\n", result.Number)
	fmt.Fprintf(h.out, "Verification code (shown once, store it safely): %s\n", result.Code)
	return nil
}

// RevokeCertificate revokes an issued certificate.
func (h *ReportHandler) RevokeCertificate(ctx context.Context) error {
	certificateID, err := h.prompt.ReadRequired("Certificate ID")
	if err != nil {
		return err
	}
	reason, err := h.prompt.ReadRequired("Reason")
	if err != nil {
		return err
	}

	confirm, err := h.prompt.ReadBool("Revoke this certificate")
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Fprintln(h.out, "Cancelled.")
		return nil
	}

	err = h.revoke.Handle(ctx, command.RevokeCertificateCommand{
		CertificateID: certificateID,
		Reason:        reason,
		Actor:         h.actor,
	})
	if err != nil {
		if errors.Is(err, shared.ErrCertificateNotFound) {
			fmt.Fprintln(h.out, "Certificate not found.")
			return nil
		}
		return err
	}

	fmt.Fprintln(h.out, "Certificate revoked. Verification will now report it as revoked.")
	return nil
}

// ExportCSV streams enrollments to a CSV file in batches, so large
// exports never hold the full result set in memory.
func (h *ReportHandler) ExportCSV(ctx context.Context) error {
	courseID, err := h.prompt.ReadLine("Course ID filter [skip]")
	if err != nil {
		return err
	}
	status, err := h.prompt.Choose("Status filter",
		"all", "pending", "active", "completed", "withdrawn", "failed")
	if err != nil {
		return err
	}
	path, err := h.prompt.ReadLine("Output file [enrollments.csv]")
	if err != nil {
		return err
	}
	if path == "" {
		path = "enrollments.csv"
	}

	q := query.ExportEnrollmentsQuery{CourseID: courseID}
	if status != "all" {
		q.Status = status
	}
	cursor, err := h.export.Handle(ctx, q)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	total, err := h.writeCSV(ctx, file, cursor)
	if err != nil {
		// Offset is reported so a failed export can be resumed.
		fmt.Fprintf(h.out, "Export interrupted after %d row(s) (resume offset %d): %v\n",
			total, cursor.Offset(), err)
		return nil
	}

	h.log.Info("enrollments exported",
		logger.String("path", path),
		logger.Int("rows", total),
	)
	fmt.Fprintf(h.out, "Exported %d row(s) to %s\n", total, path)
	return nil
}

func (h *ReportHandler) writeCSV(ctx context.Context, w io.Writer, cursor *query.ExportCursor) (int, error) {
	writer := csv.NewWriter(w)
	header := []string{
		"enrollment_id", "student_id", "course_id", "status",
		"progress_percent", "average_grade", "attendance_rate",
		"enrolled_at", "expected_completion_at", "completed_at",
		"certificate_status",
	}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	total := 0
	for {
		batch, err := cursor.Next(ctx)
		if err != nil {
			writer.Flush()
			return total, err
		}
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			completedAt := ""
			if e.CompletedAt != nil {
				completedAt = timeutil.FormatDateTime(*e.CompletedAt)
			}
			record := []string{
				e.ID, e.StudentID, e.CourseID, e.Status,
				strconv.Itoa(e.ProgressPercent),
				strconv.FormatFloat(e.AverageGrade, 'f', 2, 64),
				strconv.FormatFloat(e.AttendanceRate, 'f', 4, 64),
				timeutil.FormatDateTime(e.EnrolledAt),
				timeutil.FormatDateTime(e.ExpectedCompletionAt),
				completedAt,
				e.CertificateStatus,
			}
			if err := writer.Write(record); err != nil {
				writer.Flush()
				return total, err
			}
			total++
		}
	}

	writer.Flush()
	return total, writer.Error()
}

// RecentActivity prints the newest audit log entries.
func (h *ReportHandler) RecentActivity(ctx context.Context) error {
	limit, err := h.prompt.ReadInt("How many entries", 20)
	if err != nil {
		return err
	}

	entries, err := h.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}

	fmt.Fprint(h.out, presenter.ActivityTable(entries))
	return nil
}

// EntityActivity prints the audit trail for one entity.
func (h *ReportHandler) EntityActivity(ctx context.Context) error {
	id, err := h.prompt.ReadRequired("Entity ID (enrollment, student, course or certificate)")
	if err != nil {
		return err
	}

	entries, err := h.auditRepo.ListByAggregate(ctx, id, 50)
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}

	fmt.Fprint(h.out, presenter.ActivityTable(entries))
	return nil
}
