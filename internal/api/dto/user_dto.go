package dto

// AdminUserRequest payload for creating or updating accounts via the admin
// surface.
type AdminUserRequest struct {
	ID       string `json:"_id"`
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// DeleteUserRequest payload for account deletion.
type DeleteUserRequest struct {
	ID string `json:"_id" validate:"required"`
}

// UserResponse is the admin view of an account.
type UserResponse struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	RoleID             string   `json:"role"`
	RevokedPermissions []string `json:"revoked_permissions"`
}
