package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventRoleAssigned        EventType = "role_assigned"
	EventPermissionRevoked   EventType = "permission_revoked"
	EventPermissionRestored  EventType = "permission_restored"
	EventUserDeleted         EventType = "user_deleted"
	EventAdminCreatedAccount EventType = "admin_created_account"
)

// Event represents an access-control mutation emitted by services. ActorID is
// empty for self-service events such as registration.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// RoleAssignedPayload payload.
type RoleAssignedPayload struct {
	OldRoleID string `json:"old_role_id"`
	NewRoleID string `json:"new_role_id"`
}

// PermissionPayload payload for revoke/restore events.
type PermissionPayload struct {
	Permission string `json:"permission"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	RoleID   string `json:"role_id"`
}
