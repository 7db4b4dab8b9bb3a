package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	catalog := DefaultCatalog()
	require.NoError(t, catalog.Validate())

	for _, name := range []string{domain.RolePatient, domain.RoleDoctor, domain.RoleNurse, domain.RoleAdministrator} {
		_, ok := catalog.Find(name)
		assert.True(t, ok, "catalog must define %s", name)
	}
}

func TestAdministratorIsDerivedUnion(t *testing.T) {
	catalog := DefaultCatalog()
	admin, ok := catalog.Find(domain.RoleAdministrator)
	require.True(t, ok)

	adminSet := domain.NewPermissionSet(admin.Permissions)

	for _, def := range catalog.Roles {
		if def.Name == domain.RoleAdministrator {
			continue
		}
		for _, p := range def.Permissions {
			assert.True(t, adminSet.Contains(p),
				"administrator must inherit %s from %s", p, def.Name)
		}
	}

	assert.True(t, adminSet.Contains(domain.PermManageUsers))
	assert.True(t, adminSet.Contains(domain.PermManageAccess))
	assert.True(t, adminSet.Contains(domain.PermAnalyzeData))
}

func TestAdminOnlyPermissionsStayExclusive(t *testing.T) {
	catalog := DefaultCatalog()

	for _, def := range catalog.Roles {
		if def.Name == domain.RoleAdministrator {
			continue
		}
		set := domain.NewPermissionSet(def.Permissions)
		assert.False(t, set.Contains(domain.PermManageUsers), "%s must not manage users", def.Name)
		assert.False(t, set.Contains(domain.PermManageAccess), "%s must not manage access", def.Name)
		assert.False(t, set.Contains(domain.PermAnalyzeData), "%s must not analyze data", def.Name)
	}
}

func TestValidateRejectsDuplicateRoleNames(t *testing.T) {
	catalog := Catalog{
		Version: 1,
		Roles: []RoleDefinition{
			{Name: "Patient", Permissions: []domain.Permission{domain.PermLogin}},
			{Name: "Patient", Permissions: []domain.Permission{domain.PermLogin}},
		},
	}
	assert.Error(t, catalog.Validate())
}

func TestValidateRejectsUnknownPermission(t *testing.T) {
	catalog := Catalog{
		Version: 1,
		Roles: []RoleDefinition{
			{Name: "Patient", Permissions: []domain.Permission{"launch_rockets"}},
		},
	}
	assert.Error(t, catalog.Validate())
}

func TestValidateRejectsEmptyRoleName(t *testing.T) {
	catalog := Catalog{
		Version: 1,
		Roles:   []RoleDefinition{{Name: "", Permissions: nil}},
	}
	assert.Error(t, catalog.Validate())
}
