// Package audit persists the activity log. Every domain event published on
// the bus becomes one append-only log entry with actor attribution.
// Verification codes never pass through this channel.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/pkg/logger"
)

// Entry is one activity log record.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string

	// EventType is the domain event type that produced the entry.
	EventType shared.EventType

	// AggregateID is the entity the event belongs to.
	AggregateID string

	// Actor is who triggered the operation ("system" for background jobs).
	Actor string

	// Details holds the event payload.
	Details map[string]interface{}

	// OccurredAt is when the event occurred.
	OccurredAt time.Time
}

// Repository stores activity log entries.
type Repository interface {
	// Append persists an entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry Entry) error

	// ListByAggregate returns entries for one entity, newest first.
	ListByAggregate(ctx context.Context, aggregateID string, limit int) ([]Entry, error)

	// ListRecent returns the most recent entries across all entities.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Recorder subscribes to the event bus and writes the activity log.
// Recording is best-effort: a failed append is logged and dropped, it
// never propagates back into the operation that emitted the event.
type Recorder struct {
	repo Repository
	log  *logger.Logger
}

// NewRecorder creates a new Recorder.
func NewRecorder(repo Repository, log *logger.Logger) *Recorder {
	return &Recorder{
		repo: repo,
		log:  log.With(logger.Component("audit")),
	}
}

// Attach subscribes the recorder to all events on the bus.
func (r *Recorder) Attach(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(r.handle)
}

// handle converts a domain event into an activity log entry.
func (r *Recorder) handle(event shared.Event) error {
	payload := event.Payload()

	actor := shared.ActorSystem.String()
	if a, ok := payload["actor"].(string); ok && a != "" {
		actor = a
	}

	entry := Entry{
		ID:          uuid.NewString(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		Actor:       actor,
		Details:     payload,
		OccurredAt:  event.OccurredAt(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.repo.Append(ctx, entry); err != nil {
		r.log.Error("failed to append audit entry",
			logger.String("event_type", string(event.EventType())),
			logger.Err(err),
		)
	}
	return nil
}
