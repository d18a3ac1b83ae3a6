package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hbini/training-management-system/internal/domain/course"
	"github.com/Hbini/training-management-system/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const courseColumns = `id, title, description, duration_hours, category, instructor,
	   prerequisites, max_seats, fee_cents, is_active, created_at, updated_at`

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// Create inserts a new course. Titles are unique case-insensitively.
func (r *CourseRepository) Create(ctx context.Context, c *course.Course) error {
	query := `
		INSERT INTO courses (
			id, title, description, duration_hours, category, instructor,
			prerequisites, max_seats, fee_cents, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.DurationHours,
		string(c.Category),
		c.Instructor,
		c.Prerequisites,
		c.MaxSeats,
		c.Fee.Cents(),
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCourseAlreadyExists
		}
		return fmt.Errorf("failed to create course: %w", mapError(err))
	}
	return nil
}

// GetByID returns a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*course.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	return r.scanCourse(r.conn.QueryRow(ctx, query, id))
}

// Update saves course changes.
func (r *CourseRepository) Update(ctx context.Context, c *course.Course) error {
	query := `
		UPDATE courses SET
			title = $1,
			description = $2,
			duration_hours = $3,
			category = $4,
			instructor = $5,
			prerequisites = $6,
			max_seats = $7,
			fee_cents = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $11
	`

	result, err := r.conn.Exec(ctx, query,
		c.Title,
		c.Description,
		c.DurationHours,
		string(c.Category),
		c.Instructor,
		c.Prerequisites,
		c.MaxSeats,
		c.Fee.Cents(),
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrCourseAlreadyExists
		}
		return fmt.Errorf("failed to update course: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCourseNotFound
	}
	return nil
}

// GetAll returns the course catalog with filters and pagination.
func (r *CourseRepository) GetAll(ctx context.Context, opts course.ListOptions) ([]*course.Course, error) {
	var conditions []string
	var args []interface{}

	if opts.Category != "" {
		args = append(args, string(opts.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if opts.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := fmt.Sprintf("SELECT %s FROM courses", courseColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY title ASC"

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
		return nil, fmt.Errorf("failed to query courses: %w", mapError(err))
	}
	defer rows.Close()

	var courses []*course.Course
	for rows.Next() {
		c, err := r.scanCourseFromRows(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Exists checks if a course exists by ID.
func (r *CourseRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", mapError(err))
	}
	return exists, nil
}

// scanCourse scans a single course from a row.
func (r *CourseRepository) scanCourse(row pgx.Row) (*course.Course, error) {
	var c course.Course
	var category string
	var feeCents int64

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.DurationHours,
		&category,
		&c.Instructor,
		&c.Prerequisites,
		&c.MaxSeats,
		&feeCents,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", mapError(err))
	}

	c.Category = course.Category(category)
	c.Fee = shared.Money(feeCents)
	return &c, nil
}

// scanCourseFromRows scans a course from rows.
func (r *CourseRepository) scanCourseFromRows(rows pgx.Rows) (*course.Course, error) {
	var c course.Course
	var category string
	var feeCents int64

	err := rows.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.DurationHours,
		&category,
		&c.Instructor,
		&c.Prerequisites,
		&c.MaxSeats,
		&feeCents,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan course: %w", err)
	}

	c.Category = course.Category(category)
	c.Fee = shared.Money(feeCents)
	return &c, nil
}
