package dto

// AssignRoleRequest payload for POST /api/admin/access.
type AssignRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// PermissionRequest payload for revoke/restore.
type PermissionRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Permission string `json:"permission" validate:"required"`
}

// RoleResponse is one role with its permission set.
type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// MessageResponse wraps a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}
