package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const studentColumns = `id, name, email, phone, cpf, birth_date, status, notes,
	   registered_at, updated_at`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

// Create inserts a new student. Emails are unique case-insensitively.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, name, email, phone, cpf, birth_date, status, notes,
			registered_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Email.String(),
		s.Phone.String(),
		s.CPF.String(),
		s.BirthDate,
		string(s.Status),
		s.Notes,
		s.RegisteredAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", mapError(err))
	}
	return nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	return r.scanStudent(r.conn.QueryRow(ctx, query, id))
}

// GetByEmail returns a student by email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email student.Email) (*student.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE LOWER(email) = LOWER($1)", studentColumns)
	return r.scanStudent(r.conn.QueryRow(ctx, query, email.String()))
}

// Update saves student changes.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			name = $1,
			email = $2,
			phone = $3,
			cpf = $4,
			birth_date = $5,
			status = $6,
			notes = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.Email.String(),
		s.Phone.String(),
		s.CPF.String(),
		s.BirthDate,
		string(s.Status),
		s.Notes,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to update student: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// GetAll returns the student registry with filters and pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != "" {
		args = append(args, string(opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM students", studentColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

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
		return nil, fmt.Errorf("failed to query students: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Search searches students by name or email substring.
func (r *StudentRepository) Search(ctx context.Context, query string, opts student.ListOptions) ([]*student.Student, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	args := []interface{}{pattern}
	sqlQuery := fmt.Sprintf(`
		SELECT %s FROM students
		WHERE (LOWER(name) LIKE $1 OR LOWER(email) LIKE $1)
	`, studentColumns)

	if opts.Status != "" {
		args = append(args, string(opts.Status))
		sqlQuery += fmt.Sprintf(" AND status = $%d", len(args))
	}
	sqlQuery += " ORDER BY name ASC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		sqlQuery += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		sqlQuery += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.conn.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Exists checks if a student exists by ID.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", mapError(err))
	}
	return exists, nil
}

// scanStudent scans a single student from a row.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var email, phone, cpf, status string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&email,
		&phone,
		&cpf,
		&s.BirthDate,
		&status,
		&s.Notes,
		&s.RegisteredAt,
		&s.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", mapError(err))
	}

	s.Email = student.Email(email)
	s.Phone = student.Phone(phone)
	s.CPF = student.CPF(cpf)
	s.Status = student.Status(status)
	return &s, nil
}

// scanStudents scans multiple students from rows.
func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		var s student.Student
		var email, phone, cpf, status string

		err := rows.Scan(
			&s.ID,
			&s.Name,
			&email,
			&phone,
			&cpf,
			&s.BirthDate,
			&status,
			&s.Notes,
			&s.RegisteredAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}

		s.Email = student.Email(email)
		s.Phone = student.Phone(phone)
		s.CPF = student.CPF(cpf)
		s.Status = student.Status(status)
		students = append(students, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return students, nil
}
