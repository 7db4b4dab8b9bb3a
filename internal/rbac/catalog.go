// Package rbac holds the canonical role catalog and the startup routines
// that align the persisted role and credential stores with it.
package rbac

import (
	"fmt"
	"sort"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// RoleDefinition is one canonical role: a name and its granted permissions.
type RoleDefinition struct {
	Name        string
	Permissions []domain.Permission
}

// Catalog is a versioned snapshot of the canonical role definitions. It is
// built once and passed into the reconciler, never read from module state.
type Catalog struct {
	Version int
	Roles   []RoleDefinition
}

// adminOnlyPermissions are granted exclusively through the Administrator role.
var adminOnlyPermissions = []domain.Permission{
	domain.PermManageUsers,
	domain.PermManageAccess,
	domain.PermAnalyzeData,
}

// DefaultCatalog returns the canonical portal roles. The Administrator role
// is derived: the union of every other role's permissions plus the
// admin-only set.
func DefaultCatalog() Catalog {
	patient := RoleDefinition{
		Name: domain.RolePatient,
		Permissions: []domain.Permission{
			domain.PermRegisterAccount,
			domain.PermLogin,
			domain.PermBookAppointment,
			domain.PermRequestDoctor,
			domain.PermViewConsultation,
			domain.PermViewPrescription,
			domain.PermViewOwnRecords,
			domain.PermViewDoctors,
			domain.PermViewAppointmentsForPatient,
			domain.PermUpdateAppointment,
			domain.PermCancelPendingAppointment,
		},
	}
	doctor := RoleDefinition{
		Name: domain.RoleDoctor,
		Permissions: []domain.Permission{
			domain.PermConductConsultation,
			domain.PermPrescribeMedication,
			domain.PermViewAppointments,
			domain.PermUpdateMedicalRecords,
		},
	}
	nurse := RoleDefinition{
		Name: domain.RoleNurse,
		Permissions: []domain.Permission{
			domain.PermManageAppointments,
			domain.PermPatientFollowUp,
		},
	}

	catalog := Catalog{
		Version: 1,
		Roles:   []RoleDefinition{patient, doctor, nurse},
	}
	catalog.Roles = append(catalog.Roles, deriveAdministrator(catalog.Roles))
	return catalog
}

func deriveAdministrator(roles []RoleDefinition) RoleDefinition {
	union := make(domain.PermissionSet)
	for _, p := range adminOnlyPermissions {
		union[p] = struct{}{}
	}
	for _, role := range roles {
		for _, p := range role.Permissions {
			union[p] = struct{}{}
		}
	}

	permissions := make([]domain.Permission, 0, len(union))
	for p := range union {
		permissions = append(permissions, p)
	}
	sort.Slice(permissions, func(i, j int) bool { return permissions[i] < permissions[j] })

	return RoleDefinition{Name: domain.RoleAdministrator, Permissions: permissions}
}

// Validate rejects catalogs with duplicate role names or permissions outside
// the closed vocabulary.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Roles))
	for _, role := range c.Roles {
		if role.Name == "" {
			return fmt.Errorf("catalog v%d: role with empty name", c.Version)
		}
		if _, dup := seen[role.Name]; dup {
			return fmt.Errorf("catalog v%d: duplicate role %q", c.Version, role.Name)
		}
		seen[role.Name] = struct{}{}

		for _, p := range role.Permissions {
			if !p.Known() {
				return fmt.Errorf("catalog v%d: role %q grants unknown permission %q", c.Version, role.Name, p)
			}
		}
	}
	return nil
}

// Find returns the definition for the named role.
func (c Catalog) Find(name string) (RoleDefinition, bool) {
	for _, role := range c.Roles {
		if role.Name == name {
			return role, true
		}
	}
	return RoleDefinition{}, false
}
