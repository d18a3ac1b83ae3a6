package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Hbini/training-management-system/internal/infrastructure/audit"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AuditRepository implements audit.Repository for PostgreSQL. The log is
// append-only; entries are never updated or deleted.
type AuditRepository struct {
	conn *Connection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(conn *Connection) *AuditRepository {
	return &AuditRepository{conn: conn}
}

// Append stores an audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	_, err = r.conn.Exec(ctx,
		`INSERT INTO activity_log (id, event_type, aggregate_id, actor, details, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID,
		entry.EventType,
		entry.AggregateID,
		entry.Actor,
		detailsJSON,
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", mapError(err))
	}
	return nil
}

// ListByAggregate returns entries for an aggregate, newest first.
func (r *AuditRepository) ListByAggregate(ctx context.Context, aggregateID string, limit int) ([]audit.Entry, error) {
	query := `
		SELECT id, event_type, aggregate_id, actor, details, occurred_at
		FROM activity_log
		WHERE aggregate_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, aggregateID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// ListRecent returns the most recent entries across all aggregates.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	query := `
		SELECT id, event_type, aggregate_id, actor, details, occurred_at
		FROM activity_log
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent audit entries: %w", mapError(err))
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// scanEntries scans audit entries from rows.
func (r *AuditRepository) scanEntries(rows pgx.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry

	for rows.Next() {
		var entry audit.Entry
		var detailsJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.AggregateID,
			&entry.Actor,
			&detailsJSON,
			&entry.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &entry.Details)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
