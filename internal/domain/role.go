package domain

import "time"

// Well-known role names seeded by the startup reconciler.
const (
	RolePatient       = "Patient"
	RoleDoctor        = "Doctor"
	RoleNurse         = "Nurse"
	RoleAdministrator = "Administrator"
)

// Role is a named bundle of permissions assignable to a user. Roles are
// written only by the startup reconciler or explicit migration, never
// per-request.
type Role struct {
	ID          string
	Name        string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionSet returns the role's permissions as a set.
func (r *Role) PermissionSet() PermissionSet {
	return NewPermissionSet(r.Permissions)
}

// Grants reports whether the role grants the permission.
func (r *Role) Grants(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}
