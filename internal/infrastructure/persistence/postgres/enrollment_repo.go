package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/enrollment"
	"github.com/Hbini/training-management-system/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const enrollmentColumns = `id, student_id, course_id, status, progress_percent, average_grade,
	   enrolled_at, expected_completion_at, completed_at, updated_at`

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
// Attendance and grade records live in child tables and are loaded with
// the aggregate.
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts a new enrollment. The partial unique index on live
// (student, course) pairs enforces the one-live-enrollment rule. The row
// and its child records commit in one transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	return r.conn.EnsureTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO enrollments (
				id, student_id, course_id, status, progress_percent, average_grade,
				enrolled_at, expected_completion_at, completed_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`

		_, err := r.conn.Exec(ctx, query,
			e.ID,
			e.StudentID,
			e.CourseID,
			string(e.Status),
			e.Progress.Int(),
			e.AverageGrade,
			e.EnrolledAt,
			e.ExpectedCompletionAt,
			e.CompletedAt,
			e.UpdatedAt,
		)
		if err != nil {
			if uniqueConstraint(err) == "enrollments_live_pair_key" {
				return shared.ErrDuplicateEnrollment
			}
			return fmt.Errorf("failed to create enrollment: %w", mapError(err))
		}

		return r.saveRecords(ctx, e)
	})
}

// GetByID returns an enrollment with its attendance and grade records.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)

	e, err := r.scanEnrollment(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRecords(ctx, []*enrollment.Enrollment{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// Update saves enrollment state and replaces its child records. The UPDATE
// and the child-record rewrite commit in one transaction, so a mid-sequence
// failure cannot leave the row updated with its records dropped.
func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	return r.conn.EnsureTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE enrollments SET
				status = $1,
				progress_percent = $2,
				average_grade = $3,
				expected_completion_at = $4,
				completed_at = $5,
				updated_at = $6
			WHERE id = $7
		`

		result, err := r.conn.Exec(ctx, query,
			string(e.Status),
			e.Progress.Int(),
			e.AverageGrade,
			e.ExpectedCompletionAt,
			e.CompletedAt,
			e.UpdatedAt,
			e.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update enrollment: %w", mapError(err))
		}
		if result.RowsAffected() == 0 {
			return shared.ErrEnrollmentNotFound
		}

		if _, err := r.conn.Exec(ctx, "DELETE FROM enrollment_attendance WHERE enrollment_id = $1", e.ID); err != nil {
			return fmt.Errorf("failed to clear attendance: %w", mapError(err))
		}
		if _, err := r.conn.Exec(ctx, "DELETE FROM enrollment_grades WHERE enrollment_id = $1", e.ID); err != nil {
			return fmt.Errorf("failed to clear grades: %w", mapError(err))
		}
		return r.saveRecords(ctx, e)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Capacity & Uniqueness
// ─────────────────────────────────────────────────────────────────────────────

// CountSeatsTaken counts live enrollments for a course.
func (r *EnrollmentRepository) CountSeatsTaken(ctx context.Context, courseID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status IN ('pending', 'active')",
		courseID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count seats taken: %w", mapError(err))
	}
	return count, nil
}

// ExistsActivePair checks whether a student holds a live enrollment in a course.
func (r *EnrollmentRepository) ExistsActivePair(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2 AND status IN ('pending', 'active')
		)`,
		studentID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active pair: %w", mapError(err))
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Listing
// ─────────────────────────────────────────────────────────────────────────────

// GetByCourse returns enrollments of a course.
func (r *EnrollmentRepository) GetByCourse(ctx context.Context, courseID string, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, opts, "course_id = $%d", courseID)
}

// GetByStudent returns enrollments of a student.
func (r *EnrollmentRepository) GetByStudent(ctx context.Context, studentID string, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, opts, "student_id = $%d", studentID)
}

// GetAll returns all enrollments with pagination.
func (r *EnrollmentRepository) GetAll(ctx context.Context, opts enrollment.ListOptions) ([]*enrollment.Enrollment, error) {
	return r.list(ctx, opts, "", nil)
}

// CountByStatus returns per-status enrollment counts for a course.
func (r *EnrollmentRepository) CountByStatus(ctx context.Context, courseID string) (map[enrollment.Status]int, error) {
	rows, err := r.conn.Query(ctx,
		"SELECT status, COUNT(*) FROM enrollments WHERE course_id = $1 GROUP BY status",
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", mapError(err))
	}
	defer rows.Close()

	counts := make(map[enrollment.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[enrollment.Status(status)] = count
	}
	return counts, rows.Err()
}

// FindOverduePending finds pending enrollments whose expected completion
// date has passed.
func (r *EnrollmentRepository) FindOverduePending(ctx context.Context, before time.Time) ([]*enrollment.Enrollment, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM enrollments
		WHERE status = 'pending' AND expected_completion_at < $1
		ORDER BY expected_completion_at ASC
	`, enrollmentColumns)

	rows, err := r.conn.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue pending enrollments: %w", mapError(err))
	}
	defer rows.Close()

	enrollments, err := r.scanEnrollments(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadRecords(ctx, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// list builds and executes a filtered listing. A non-positive Limit means
// no limit.
func (r *EnrollmentRepository) list(ctx context.Context, opts enrollment.ListOptions, filterFmt string, filterArg interface{}) ([]*enrollment.Enrollment, error) {
	var conditions []string
	var args []interface{}

	if filterFmt != "" {
		args = append(args, filterArg)
		conditions = append(conditions, fmt.Sprintf(filterFmt, len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM enrollments", enrollmentColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY enrolled_at ASC, id ASC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", mapError(err))
	}
	defer rows.Close()

	enrollments, err := r.scanEnrollments(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadRecords(ctx, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// saveRecords inserts the attendance and grade records of an enrollment.
func (r *EnrollmentRepository) saveRecords(ctx context.Context, e *enrollment.Enrollment) error {
	for _, a := range e.Attendance {
		_, err := r.conn.Exec(ctx,
			`INSERT INTO enrollment_attendance (enrollment_id, class_date, present, recorded_at)
			 VALUES ($1, $2, $3, $4)`,
			e.ID, a.ClassDate, a.Present, a.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save attendance record: %w", mapError(err))
		}
	}
	for _, g := range e.Grades {
		_, err := r.conn.Exec(ctx,
			`INSERT INTO enrollment_grades (enrollment_id, assessment, score, recorded_at)
			 VALUES ($1, $2, $3, $4)`,
			e.ID, g.Assessment, float64(g.Score), g.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save grade record: %w", mapError(err))
		}
	}
	return nil
}

// loadRecords loads attendance and grade records for a set of enrollments.
func (r *EnrollmentRepository) loadRecords(ctx context.Context, enrollments []*enrollment.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}

	byID := make(map[string]*enrollment.Enrollment, len(enrollments))
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	rows, err := r.conn.Query(ctx,
		`SELECT enrollment_id, class_date, present, recorded_at
		 FROM enrollment_attendance
		 WHERE enrollment_id = ANY($1)
		 ORDER BY class_date ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load attendance records: %w", mapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var enrollmentID string
		var rec enrollment.AttendanceRecord
		if err := rows.Scan(&enrollmentID, &rec.ClassDate, &rec.Present, &rec.RecordedAt); err != nil {
			return fmt.Errorf("failed to scan attendance record: %w", err)
		}
		rec.ClassDate = enrollment.NormalizeClassDate(rec.ClassDate)
		if e, ok := byID[enrollmentID]; ok {
			e.Attendance = append(e.Attendance, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	gradeRows, err := r.conn.Query(ctx,
		`SELECT enrollment_id, assessment, score, recorded_at
		 FROM enrollment_grades
		 WHERE enrollment_id = ANY($1)
		 ORDER BY seq ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load grade records: %w", mapError(err))
	}
	defer gradeRows.Close()

	for gradeRows.Next() {
		var enrollmentID string
		var assessment string
		var score float64
		var recordedAt time.Time
		if err := gradeRows.Scan(&enrollmentID, &assessment, &score, &recordedAt); err != nil {
			return fmt.Errorf("failed to scan grade record: %w", err)
		}
		if e, ok := byID[enrollmentID]; ok {
			e.Grades = append(e.Grades, enrollment.GradeRecord{
				Assessment: assessment,
				Score:      shared.Score(score),
				RecordedAt: recordedAt,
			})
		}
	}
	return gradeRows.Err()
}

// scanEnrollment scans a single enrollment from a row.
func (r *EnrollmentRepository) scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	var status string
	var progress int

	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&status,
		&progress,
		&e.AverageGrade,
		&e.EnrolledAt,
		&e.ExpectedCompletionAt,
		&e.CompletedAt,
		&e.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrollment: %w", mapError(err))
	}

	e.Status = enrollment.Status(status)
	e.Progress = shared.Progress(progress)
	return &e, nil
}

// scanEnrollments scans multiple enrollments from rows.
func (r *EnrollmentRepository) scanEnrollments(rows pgx.Rows) ([]*enrollment.Enrollment, error) {
	var enrollments []*enrollment.Enrollment

	for rows.Next() {
		var e enrollment.Enrollment
		var status string
		var progress int

		err := rows.Scan(
			&e.ID,
			&e.StudentID,
			&e.CourseID,
			&status,
			&progress,
			&e.AverageGrade,
			&e.EnrolledAt,
			&e.ExpectedCompletionAt,
			&e.CompletedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}

		e.Status = enrollment.Status(status)
		e.Progress = shared.Progress(progress)
		enrollments = append(enrollments, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return enrollments, nil
}
