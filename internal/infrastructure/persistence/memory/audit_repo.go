package memory

import (
	"context"

	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
)

// AuditRepository is the in-memory audit.Repository. Entries are append-only.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// Append stores an activity log entry.
func (r *AuditRepository) Append(_ context.Context, entry audit.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.auditEntries = append(r.store.auditEntries, entry)
	return nil
}

// ListByAggregate returns entries for one entity, newest first.
func (r *AuditRepository) ListByAggregate(_ context.Context, aggregateID string, limit int) ([]audit.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []audit.Entry
	for i := len(r.store.auditEntries) - 1; i >= 0; i-- {
		entry := r.store.auditEntries[i]
		if entry.AggregateID != aggregateID {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ListRecent returns the most recent entries across all entities.
func (r *AuditRepository) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []audit.Entry
	for i := len(r.store.auditEntries) - 1; i >= 0; i-- {
		result = append(result, r.store.auditEntries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}
