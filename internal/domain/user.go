package domain

import "time"

// User is the credential record for any portal account: patients, doctors,
// nurses and administrators all share this shape and differ only by role.
// RevokedPermissions is a per-user deny-list layered on top of the role's
// allow-list.
type User struct {
	ID                 string
	Username           string
	PasswordHash       string
	RoleID             string
	RevokedPermissions []Permission
	DateOfBirth        string
	HomeAddress        string
	PhoneNumber        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasRevoked reports whether the permission is currently revoked for the user.
func (u *User) HasRevoked(p Permission) bool {
	for _, revoked := range u.RevokedPermissions {
		if revoked == p {
			return true
		}
	}
	return false
}
