package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// AccessService implements the privileged access-administration operations.
// Callers must already hold manage_access; the HTTP gate enforces that.
type AccessService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	dispatcher events.Dispatcher
}

// NewAccessService builds the service.
func NewAccessService(users repository.UserRepository, roles repository.RoleRepository, dispatcher events.Dispatcher) *AccessService {
	return &AccessService{users: users, roles: roles, dispatcher: dispatcher}
}

// ListRoles returns every persisted role with its permissions.
func (s *AccessService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.roles.GetAll(ctx)
}

// AssignRole overwrites the user's role reference. Existing per-user
// revocations are deliberately kept: a role change does not clear the
// deny-list.
func (s *AccessService) AssignRole(ctx context.Context, actorID, userID, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return err
	}

	if err := s.users.UpdateRole(ctx, userID, role.ID); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventRoleAssigned,
		ActorID:   actorID,
		SubjectID: userID,
		Payload:   events.RoleAssignedPayload{OldRoleID: user.RoleID, NewRoleID: role.ID},
	})
	return nil
}

// RevokePermission adds a permission to the user's deny-list. The permission
// must be one the user's current role actually grants; revoking anything else
// is rejected as invalid. Returns true when the permission was already
// revoked (the operation is an idempotent set add).
func (s *AccessService) RevokePermission(ctx context.Context, actorID, userID string, permission domain.Permission) (bool, error) {
	if !permission.Known() {
		return false, apperrors.NewInvalidPermission(string(permission))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return false, err
	}

	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewRoleNotFound(user.RoleID)
		}
		return false, err
	}
	if !role.Grants(permission) {
		return false, apperrors.NewInvalidPermission(string(permission))
	}

	added, err := s.users.AddRevokedPermission(ctx, userID, permission)
	if err != nil {
		return false, err
	}
	if !added {
		return true, nil
	}

	s.publish(ctx, events.Event{
		Type:      events.EventPermissionRevoked,
		ActorID:   actorID,
		SubjectID: userID,
		Payload:   events.PermissionPayload{Permission: string(permission)},
	})
	return false, nil
}

// RestorePermission removes a permission from the user's deny-list,
// returning the user to exactly the pre-revocation authorization outcome.
func (s *AccessService) RestorePermission(ctx context.Context, actorID, userID string, permission domain.Permission) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return err
	}

	removed, err := s.users.RemoveRevokedPermission(ctx, userID, permission)
	if err != nil {
		return err
	}
	if !removed {
		return apperrors.NewPermissionNotRevoked(string(permission))
	}

	s.publish(ctx, events.Event{
		Type:      events.EventPermissionRestored,
		ActorID:   actorID,
		SubjectID: userID,
		Payload:   events.PermissionPayload{Permission: string(permission)},
	})
	return nil
}

func (s *AccessService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
