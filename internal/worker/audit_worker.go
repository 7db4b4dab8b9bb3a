package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository"
)

// auditedEvents are the event types the audit worker persists.
var auditedEvents = []events.EventType{
	events.EventUserRegistered,
	events.EventRoleAssigned,
	events.EventPermissionRevoked,
	events.EventPermissionRestored,
	events.EventUserDeleted,
	events.EventAdminCreatedAccount,
}

// StartAuditWorker subscribes the audit trail to access-control events.
// Persistence failures are logged, never propagated: the audit log is
// informational and must not fail the originating operation.
func StartAuditWorker(dispatcher events.Dispatcher, audits repository.AuditRepository, logger *zap.Logger) {
	if dispatcher == nil || audits == nil {
		return
	}

	handler := func(ctx context.Context, event events.Event) error {
		detail := ""
		if event.Payload != nil {
			if raw, err := json.Marshal(event.Payload); err == nil {
				detail = string(raw)
			}
		}

		entry := &domain.AuditEntry{
			EventType: string(event.Type),
			ActorID:   event.ActorID,
			SubjectID: event.SubjectID,
			Detail:    detail,
		}
		if err := audits.Create(ctx, entry); err != nil {
			logger.Error("persist audit entry",
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
			return err
		}

		logger.Info("access event recorded",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID))
		return nil
	}

	for _, eventType := range auditedEvents {
		dispatcher.Subscribe(eventType, handler)
	}
}
