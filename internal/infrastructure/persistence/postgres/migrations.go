package postgres

import (
	"context"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator applies schema migrations in order, tracking them in
// schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a migrator with the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if needed.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Pool().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedVersions returns the set of applied migration versions.
func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}
		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, func(ctx context.Context) error {
			q := m.conn.querier(ctx)
			if _, err := q.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insertQuery := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := q.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// Status returns the migration status.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)
	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}
	return result, nil
}

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_students", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_courses", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_enrollments", UpSQL: migration003Up, DownSQL: migration003Down},
		{Version: 4, Name: "create_certificates", UpSQL: migration004Up, DownSQL: migration004Down},
		{Version: 5, Name: "create_activity_log", UpSQL: migration005Up, DownSQL: migration005Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE students (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    phone         TEXT NOT NULL DEFAULT '',
    cpf           TEXT NOT NULL DEFAULT '',
    birth_date    DATE,
    status        TEXT NOT NULL DEFAULT 'active',
    notes         TEXT NOT NULL DEFAULT '',
    registered_at TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX students_email_key ON students (LOWER(email));
CREATE INDEX students_status_idx ON students (status);
`

const migration001Down = `DROP TABLE IF EXISTS students;`

const migration002Up = `
CREATE TABLE courses (
    id             UUID PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    duration_hours INTEGER NOT NULL,
    category       TEXT NOT NULL,
    instructor     TEXT NOT NULL,
    prerequisites  TEXT NOT NULL DEFAULT '',
    max_seats      INTEGER NOT NULL,
    fee_cents      BIGINT NOT NULL DEFAULT 0,
    is_active      BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX courses_title_key ON courses (LOWER(title));
CREATE INDEX courses_category_idx ON courses (category);
`

const migration002Down = `DROP TABLE IF EXISTS courses;`

const migration003Up = `
CREATE TABLE enrollments (
    id                     UUID PRIMARY KEY,
    student_id             UUID NOT NULL REFERENCES students (id),
    course_id              UUID NOT NULL REFERENCES courses (id),
    status                 TEXT NOT NULL DEFAULT 'pending',
    progress_percent       INTEGER NOT NULL DEFAULT 0,
    average_grade          DOUBLE PRECISION NOT NULL DEFAULT 0,
    enrolled_at            TIMESTAMPTZ NOT NULL,
    expected_completion_at TIMESTAMPTZ NOT NULL,
    completed_at           TIMESTAMPTZ,
    updated_at             TIMESTAMPTZ NOT NULL,
    CONSTRAINT enrollments_progress_range CHECK (progress_percent BETWEEN 0 AND 100)
);

-- One live enrollment per (student, course) pair.
CREATE UNIQUE INDEX enrollments_live_pair_key
    ON enrollments (student_id, course_id)
    WHERE status IN ('pending', 'active');

CREATE INDEX enrollments_course_idx ON enrollments (course_id, status);
CREATE INDEX enrollments_student_idx ON enrollments (student_id);
CREATE INDEX enrollments_overdue_idx ON enrollments (expected_completion_at) WHERE status = 'pending';

CREATE TABLE enrollment_attendance (
    enrollment_id UUID NOT NULL REFERENCES enrollments (id) ON DELETE CASCADE,
    class_date    DATE NOT NULL,
    present       BOOLEAN NOT NULL,
    recorded_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (enrollment_id, class_date)
);

CREATE TABLE enrollment_grades (
    enrollment_id UUID NOT NULL REFERENCES enrollments (id) ON DELETE CASCADE,
    seq           BIGINT GENERATED ALWAYS AS IDENTITY,
    assessment    TEXT NOT NULL,
    score         DOUBLE PRECISION NOT NULL,
    recorded_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (enrollment_id, seq),
    CONSTRAINT grades_score_range CHECK (score BETWEEN 0 AND 100)
);
`

const migration003Down = `
DROP TABLE IF EXISTS enrollment_grades;
DROP TABLE IF EXISTS enrollment_attendance;
DROP TABLE IF EXISTS enrollments;
`

const migration004Up = `
CREATE SEQUENCE certificate_number_seq;

CREATE TABLE certificates (
    id             UUID PRIMARY KEY,
    enrollment_id  UUID NOT NULL REFERENCES enrollments (id),
    number         TEXT NOT NULL,
    code           TEXT NOT NULL,
    code_digest    TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'valid',
    revoked_reason TEXT NOT NULL DEFAULT '',
    revoked_at     TIMESTAMPTZ,
    issued_by      TEXT NOT NULL,
    issued_at      TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX certificates_enrollment_key ON certificates (enrollment_id);
CREATE UNIQUE INDEX certificates_code_digest_key ON certificates (code_digest);
`

const migration004Down = `
DROP TABLE IF EXISTS certificates;
DROP SEQUENCE IF EXISTS certificate_number_seq;
`

const migration005Up = `
CREATE TABLE activity_log (
    id           UUID PRIMARY KEY,
    event_type   TEXT NOT NULL,
    aggregate_id TEXT NOT NULL,
    actor        TEXT NOT NULL,
    details      JSONB NOT NULL DEFAULT '{}'::jsonb,
    occurred_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX activity_log_aggregate_idx ON activity_log (aggregate_id, occurred_at DESC);
CREATE INDEX activity_log_occurred_idx ON activity_log (occurred_at DESC);
`

const migration005Down = `DROP TABLE IF EXISTS activity_log;`
