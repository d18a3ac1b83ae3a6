package memory

import (
	"context"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/internal/domain/shared"
)

// CertificateRepository is the in-memory certificate.Repository.
type CertificateRepository struct {
	store *Store
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(store *Store) *CertificateRepository {
	return &CertificateRepository{store: store}
}

// Create stores a new certificate, enforcing the one-per-enrollment and
// unique-code constraints.
func (r *CertificateRepository) Create(_ context.Context, c *certificate.Certificate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.certificates {
		if existing.EnrollmentID == c.EnrollmentID {
			return shared.ErrAlreadyCertified
		}
		if existing.CodeDigest == c.CodeDigest {
			return shared.ErrDuplicateCode
		}
	}

	r.store.certificates[c.ID] = cloneCertificate(c)
	return nil
}

// GetByID returns a certificate by ID.
func (r *CertificateRepository) GetByID(_ context.Context, id string) (*certificate.Certificate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.certificates[id]
	if !ok {
		return nil, shared.ErrCertificateNotFound
	}
	return cloneCertificate(c), nil
}

// GetByEnrollment returns the certificate issued for an enrollment.
func (r *CertificateRepository) GetByEnrollment(_ context.Context, enrollmentID string) (*certificate.Certificate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.certificates {
		if c.EnrollmentID == enrollmentID {
			return cloneCertificate(c), nil
		}
	}
	return nil, shared.ErrCertificateNotFound
}

// GetByCodeDigest performs an exact lookup by verification code digest.
func (r *CertificateRepository) GetByCodeDigest(_ context.Context, digest string) (*certificate.Certificate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.certificates {
		if c.CodeDigest == digest {
			return cloneCertificate(c), nil
		}
	}
	return nil, shared.ErrCertificateNotFound
}

// Update persists a status change (revocation).
func (r *CertificateRepository) Update(_ context.Context, c *certificate.Certificate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.certificates[c.ID]; !ok {
		return shared.ErrCertificateNotFound
	}
	r.store.certificates[c.ID] = cloneCertificate(c)
	return nil
}

// NextSequence returns the next certificate number sequence value.
func (r *CertificateRepository) NextSequence(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.certSeq++
	return r.store.certSeq, nil
}

// Count returns the total number of issued certificates.
func (r *CertificateRepository) Count(_ context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.certificates), nil
}
