package audit_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hbini/training-management-system/internal/domain/shared"
	"github.com/Hbini/training-management-system/internal/infrastructure/audit"
	"github.com/Hbini/training-management-system/internal/infrastructure/messaging"
	"github.com/Hbini/training-management-system/internal/infrastructure/persistence/memory"
	"github.com/Hbini/training-management-system/pkg/logger"
)

func newRecorderFixture(t *testing.T) (*messaging.InMemoryEventBus, audit.Repository) {
	t.Helper()

	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{Logger: log})
	repo := memory.NewAuditRepository(memory.NewStore())
	require.NoError(t, audit.NewRecorder(repo, log).Attach(bus))
	return bus, repo
}

func TestRecorder_PersistsPublishedEvents(t *testing.T) {
	bus, repo := newRecorderFixture(t)
	actor := shared.Actor("maria")

	require.NoError(t, bus.Publish(shared.NewEnrollmentCreatedEvent("e-1", "s-1", "c-1", actor)))
	require.NoError(t, bus.Publish(shared.NewEnrollmentTransitionedEvent("e-1", "pending", "active", actor)))
	require.NoError(t, bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30)))

	entries, err := repo.ListByAggregate(context.Background(), "e-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, shared.EventEnrollmentTransitioned, entries[0].EventType)
	assert.Equal(t, shared.EventEnrollmentCreated, entries[1].EventType)
	assert.Equal(t, "maria", entries[0].Actor)
	assert.Equal(t, "active", entries[0].Details["to_status"])
	assert.NotEmpty(t, entries[0].ID)
}

func TestRecorder_SystemActorFallback(t *testing.T) {
	bus, repo := newRecorderFixture(t)

	// Registry events carry no actor field.
	require.NoError(t, bus.Publish(shared.NewStudentRegisteredEvent("s-1", "Ana", "ana@example.com")))

	entries, err := repo.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, shared.ActorSystem.String(), entries[0].Actor)
}

func TestRecorder_ListRecentLimit(t *testing.T) {
	bus, repo := newRecorderFixture(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewCourseCreatedEvent("c-1", "Go", 30)))
	}

	entries, err := repo.ListRecent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
