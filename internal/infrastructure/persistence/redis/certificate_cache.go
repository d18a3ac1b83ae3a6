package redis

import (
	"context"
	"errors"
	"time"

	"github.com/Hbini/training-management-system/internal/domain/certificate"
	"github.com/Hbini/training-management-system/pkg/circuitbreaker"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE LOOKUP CACHE
// ══════════════════════════════════════════════════════════════════════════════

// cachedCertificate is the wire form of a cached certificate. The plaintext
// verification code is never stored; entries are keyed by its digest.
type cachedCertificate struct {
	ID            string     `json:"id"`
	EnrollmentID  string     `json:"enrollment_id"`
	Number        string     `json:"number"`
	CodeDigest    string     `json:"code_digest"`
	Status        string     `json:"status"`
	RevokedReason string     `json:"revoked_reason,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	IssuedBy      string     `json:"issued_by"`
	IssuedAt      time.Time  `json:"issued_at"`
}

// CertificateCache implements query.CertificateLookup on Redis. The TTL is
// short so a revocation becomes visible quickly even while the entry is hot.
type CertificateCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewCertificateCache creates a new CertificateCache.
func NewCertificateCache(cache *Cache, log *logger.Logger) *CertificateCache {
	return &CertificateCache{
		cache: cache,
		breaker: circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("cache circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		log: log.With(logger.Component("certificate_cache")),
	}
}

// GetByDigest returns a cached certificate by verification-code digest.
func (c *CertificateCache) GetByDigest(ctx context.Context, digest string) (*certificate.Certificate, bool) {
	result, err := c.breaker.Execute(func() (any, error) {
		var cached cachedCertificate
		if err := c.cache.Get(ctx, CertificateKey(digest), &cached); err != nil {
			return nil, err
		}
		return &cached, nil
	})
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug("certificate cache read failed", logger.Err(err))
		}
		return nil, false
	}

	cached := result.(*cachedCertificate)
	return &certificate.Certificate{
		ID:            cached.ID,
		EnrollmentID:  cached.EnrollmentID,
		Number:        cached.Number,
		CodeDigest:    cached.CodeDigest,
		Status:        certificate.Status(cached.Status),
		RevokedReason: cached.RevokedReason,
		RevokedAt:     cached.RevokedAt,
		IssuedBy:      cached.IssuedBy,
		IssuedAt:      cached.IssuedAt,
	}, true
}

// Put stores a certificate for lookup by its code digest.
// Failures are logged and swallowed.
func (c *CertificateCache) Put(ctx context.Context, cert *certificate.Certificate) {
	if cert == nil {
		return
	}

	cached := cachedCertificate{
		ID:            cert.ID,
		EnrollmentID:  cert.EnrollmentID,
		Number:        cert.Number,
		CodeDigest:    cert.CodeDigest,
		Status:        string(cert.Status),
		RevokedReason: cert.RevokedReason,
		RevokedAt:     cert.RevokedAt,
		IssuedBy:      cert.IssuedBy,
		IssuedAt:      cert.IssuedAt,
	}

	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.cache.Set(ctx, CertificateKey(cert.CodeDigest), cached, TTLCertificateCache)
	})
	if err != nil {
		c.log.Debug("certificate cache write failed",
			logger.CertificateID(cert.ID),
			logger.Err(err),
		)
	}
}

// Invalidate drops a cached certificate, used after revocation.
func (c *CertificateCache) Invalidate(ctx context.Context, digest string) {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.cache.Delete(ctx, CertificateKey(digest))
	})
	if err != nil {
		c.log.Debug("certificate cache invalidation failed", logger.Err(err))
	}
}
