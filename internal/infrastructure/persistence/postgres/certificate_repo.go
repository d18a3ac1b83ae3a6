package postgres

import (
	"context"
	"fmt"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const certificateColumns = `id, enrollment_id, number, code, code_digest, status,
	   revoked_reason, revoked_at, issued_by, issued_at`

// CertificateRepository implements certificate.Repository for PostgreSQL.
type CertificateRepository struct {
	conn *Connection
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(conn *Connection) *CertificateRepository {
	return &CertificateRepository{conn: conn}
}

// Create inserts a new certificate. Unique indexes distinguish the two
// failure modes: one certificate per enrollment, and one owner per code.
func (r *CertificateRepository) Create(ctx context.Context, c *certificate.Certificate) error {
	query := `
		INSERT INTO certificates (
			id, enrollment_id, number, code, code_digest, status,
			revoked_reason, revoked_at, issued_by, issued_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.EnrollmentID,
		c.Number,
		string(c.Code),
		c.CodeDigest,
		string(c.Status),
		c.RevokedReason,
		c.RevokedAt,
		c.IssuedBy,
		c.IssuedAt,
	)
	if err != nil {
		switch uniqueConstraint(err) {
		case "certificates_enrollment_key":
			return shared.ErrAlreadyCertified
		case "certificates_code_digest_key":
			return shared.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create certificate: %w", mapError(err))
	}
	return nil
}

// GetByID returns a certificate by ID.
func (r *CertificateRepository) GetByID(ctx context.Context, id string) (*certificate.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE id = $1", certificateColumns)
	return r.scanCertificate(r.conn.QueryRow(ctx, query, id))
}

// GetByEnrollment returns the certificate issued for an enrollment.
func (r *CertificateRepository) GetByEnrollment(ctx context.Context, enrollmentID string) (*certificate.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE enrollment_id = $1", certificateColumns)
	return r.scanCertificate(r.conn.QueryRow(ctx, query, enrollmentID))
}

// GetByCodeDigest returns a certificate by verification code digest.
func (r *CertificateRepository) GetByCodeDigest(ctx context.Context, digest string) (*certificate.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE code_digest = $1", certificateColumns)
	return r.scanCertificate(r.conn.QueryRow(ctx, query, digest))
}

// Update saves certificate state, including revocation.
func (r *CertificateRepository) Update(ctx context.Context, c *certificate.Certificate) error {
	query := `
		UPDATE certificates SET
			status = $1,
			revoked_reason = $2,
			revoked_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query,
		string(c.Status),
		c.RevokedReason,
		c.RevokedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update certificate: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return shared.ErrCertificateNotFound
	}
	return nil
}

// NextSequence reserves the next certificate number.
func (r *CertificateRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.conn.QueryRow(ctx, "SELECT nextval('certificate_number_seq')").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to get next certificate sequence: %w", mapError(err))
	}
	return seq, nil
}

// Count returns the total number of certificates.
func (r *CertificateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM certificates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count certificates: %w", mapError(err))
	}
	return count, nil
}

// scanCertificate scans a single certificate from a row.
func (r *CertificateRepository) scanCertificate(row pgx.Row) (*certificate.Certificate, error) {
	var c certificate.Certificate
	var code, status string

	err := row.Scan(
		&c.ID,
		&c.EnrollmentID,
		&c.Number,
		&code,
		&c.CodeDigest,
		&status,
		&c.RevokedReason,
		&c.RevokedAt,
		&c.IssuedBy,
		&c.IssuedAt,
	)
	if IsNoRows(err) {
		return nil, shared.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan certificate: %w", mapError(err))
	}

	c.Code = certificate.VerificationCode(code)
	c.Status = certificate.Status(status)
	return &c, nil
}
