package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository/repotest"
)

func TestAuditWorkerPersistsAccessEvents(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	audits := repotest.NewAuditRepo()
	StartAuditWorker(dispatcher, audits, zap.NewNop())

	err := dispatcher.Publish(ctx, events.Event{
		ID:        "evt-1",
		Type:      events.EventPermissionRevoked,
		ActorID:   "admin-1",
		SubjectID: "user-1",
		Payload:   events.PermissionPayload{Permission: "book_appointment"},
	})
	require.NoError(t, err)

	entries := audits.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "permission_revoked", entries[0].EventType)
	assert.Equal(t, "admin-1", entries[0].ActorID)
	assert.Equal(t, "user-1", entries[0].SubjectID)
	assert.JSONEq(t, `{"permission":"book_appointment"}`, entries[0].Detail)
}

func TestAuditWorkerIgnoresUnrelatedEvents(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	audits := repotest.NewAuditRepo()
	StartAuditWorker(dispatcher, audits, zap.NewNop())

	err := dispatcher.Publish(ctx, events.Event{
		ID:   "evt-1",
		Type: "unrelated_event",
	})
	require.NoError(t, err)
	assert.Empty(t, audits.Entries())
}

func TestAuditWorkerToleratesNilDependencies(t *testing.T) {
	// No subscriptions, no panic.
	StartAuditWorker(nil, repotest.NewAuditRepo(), zap.NewNop())
	StartAuditWorker(events.NewInMemoryDispatcher(), nil, zap.NewNop())
}
