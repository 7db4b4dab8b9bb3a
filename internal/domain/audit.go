package domain

import "time"

// AuditEntry is a persisted trace of an access-administration mutation.
// Informational only: the authorization decision never reads the audit log.
type AuditEntry struct {
	ID        string
	EventType string
	ActorID   string
	SubjectID string
	Detail    string
	CreatedAt time.Time
}
