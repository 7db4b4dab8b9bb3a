package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository/repotest"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

type accessFixture struct {
	svc        *service.AccessService
	users      *repotest.UserRepo
	roles      *repotest.RoleRepo
	dispatcher events.Dispatcher
	published  *[]events.Event

	patientRole *domain.Role
	doctorRole  *domain.Role
	alice       *domain.User
}

func newAccessFixture(t *testing.T) *accessFixture {
	t.Helper()
	ctx := context.Background()

	roles := repotest.NewRoleRepo()
	patientRole := &domain.Role{
		Name:        domain.RolePatient,
		Permissions: []domain.Permission{domain.PermLogin, domain.PermBookAppointment, domain.PermViewOwnRecords},
	}
	require.NoError(t, roles.Create(ctx, patientRole))
	doctorRole := &domain.Role{
		Name:        domain.RoleDoctor,
		Permissions: []domain.Permission{domain.PermPrescribeMedication, domain.PermViewAppointments},
	}
	require.NoError(t, roles.Create(ctx, doctorRole))

	users := repotest.NewUserRepo()
	alice := &domain.User{
		Username:           "alice",
		PasswordHash:       "irrelevant",
		RoleID:             patientRole.ID,
		RevokedPermissions: []domain.Permission{},
	}
	require.NoError(t, users.Create(ctx, alice))

	published := &[]events.Event{}
	dispatcher := events.NewInMemoryDispatcher()
	capture := func(_ context.Context, event events.Event) error {
		*published = append(*published, event)
		return nil
	}
	dispatcher.Subscribe(events.EventRoleAssigned, capture)
	dispatcher.Subscribe(events.EventPermissionRevoked, capture)
	dispatcher.Subscribe(events.EventPermissionRestored, capture)

	return &accessFixture{
		svc:         service.NewAccessService(users, roles, dispatcher),
		users:       users,
		roles:       roles,
		dispatcher:  dispatcher,
		published:   published,
		patientRole: patientRole,
		doctorRole:  doctorRole,
		alice:       alice,
	}
}

func TestAssignRoleKeepsRevocations(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	already, err := f.svc.RevokePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.NoError(t, err)
	require.False(t, already)

	require.NoError(t, f.svc.AssignRole(ctx, "admin-1", f.alice.ID, f.doctorRole.ID))

	user, err := f.users.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.doctorRole.ID, user.RoleID)
	assert.True(t, user.HasRevoked(domain.PermBookAppointment),
		"a role change must not clear the deny-list")
}

func TestAssignRoleRejectsUnknownRole(t *testing.T) {
	f := newAccessFixture(t)

	err := f.svc.AssignRole(context.Background(), "admin-1", f.alice.ID, "role-999")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestAssignRoleRejectsUnknownUser(t *testing.T) {
	f := newAccessFixture(t)

	err := f.svc.AssignRole(context.Background(), "admin-1", "user-999", f.doctorRole.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}

func TestAssignRolePublishesEvent(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	require.NoError(t, f.svc.AssignRole(ctx, "admin-1", f.alice.ID, f.doctorRole.ID))

	require.Len(t, *f.published, 1)
	event := (*f.published)[0]
	assert.Equal(t, events.EventRoleAssigned, event.Type)
	assert.Equal(t, "admin-1", event.ActorID)
	assert.Equal(t, f.alice.ID, event.SubjectID)
	payload, ok := event.Payload.(events.RoleAssignedPayload)
	require.True(t, ok)
	assert.Equal(t, f.patientRole.ID, payload.OldRoleID)
	assert.Equal(t, f.doctorRole.ID, payload.NewRoleID)
}

func TestRevokePermissionAddsToDenyList(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	already, err := f.svc.RevokePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.NoError(t, err)
	assert.False(t, already)

	user, err := f.users.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.True(t, user.HasRevoked(domain.PermBookAppointment))

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.EventPermissionRevoked, (*f.published)[0].Type)
}

func TestRevokePermissionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	already, err := f.svc.RevokePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.NoError(t, err)
	require.False(t, already)

	already, err = f.svc.RevokePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.NoError(t, err)
	assert.True(t, already, "the second revoke reports the permission as already revoked")

	user, err := f.users.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, user.RevokedPermissions, 1, "deny-list holds no duplicates")
	assert.Len(t, *f.published, 1, "no event for a no-op revoke")
}

func TestRevokePermissionRejectsUnknownVocabulary(t *testing.T) {
	f := newAccessFixture(t)

	_, err := f.svc.RevokePermission(context.Background(), "admin-1", f.alice.ID, "launch_rockets")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PERMISSION", apperrors.CodeOf(err))
}

func TestRevokePermissionRejectsPermissionOutsideRole(t *testing.T) {
	f := newAccessFixture(t)

	// prescribe_medication is a known permission, but Alice's Patient role
	// never granted it, so there is nothing to revoke.
	_, err := f.svc.RevokePermission(context.Background(), "admin-1", f.alice.ID, domain.PermPrescribeMedication)
	require.Error(t, err)
	assert.Equal(t, "INVALID_PERMISSION", apperrors.CodeOf(err))
}

func TestRestorePermissionRemovesFromDenyList(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)

	_, err := f.svc.RevokePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.NoError(t, err)

	require.NoError(t, f.svc.RestorePermission(ctx, "admin-1", f.alice.ID, domain.PermBookAppointment))

	user, err := f.users.GetByID(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.False(t, user.HasRevoked(domain.PermBookAppointment))

	require.Len(t, *f.published, 2)
	assert.Equal(t, events.EventPermissionRestored, (*f.published)[1].Type)
}

func TestRestorePermissionRejectsNotRevoked(t *testing.T) {
	f := newAccessFixture(t)

	err := f.svc.RestorePermission(context.Background(), "admin-1", f.alice.ID, domain.PermBookAppointment)
	require.Error(t, err)
	assert.Equal(t, "PERMISSION_NOT_REVOKED", apperrors.CodeOf(err))
}

func TestListRolesReturnsPersistedRoles(t *testing.T) {
	f := newAccessFixture(t)

	roles, err := f.svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
