package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// UserAdminService implements the manage_users surface: administrator CRUD
// over portal accounts with arbitrary role assignment.
type UserAdminService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserAdminService builds the service.
func NewUserAdminService(users repository.UserRepository, roles repository.RoleRepository, dispatcher events.Dispatcher, bcryptCost int) *UserAdminService {
	return &UserAdminService{users: users, roles: roles, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// ListUsers returns every portal account.
func (s *UserAdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// CreateUser provisions an account with an arbitrary existing role.
func (s *UserAdminService) CreateUser(ctx context.Context, actorID, username, password, roleID string) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewDuplicateUsername(username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:           username,
		PasswordHash:       hash,
		RoleID:             role.ID,
		RevokedPermissions: []domain.Permission{},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAdminCreatedAccount,
		ActorID:   actorID,
		SubjectID: user.ID,
		Payload:   events.UserRegisteredPayload{Username: username, RoleID: role.ID},
	})
	return user, nil
}

// UpdateUser rewrites username, password and role of an existing account.
func (s *UserAdminService) UpdateUser(ctx context.Context, userID, username, password, roleID string) (*domain.User, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err == nil && existing.ID != userID {
		return nil, apperrors.NewDuplicateUsername(username)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}

	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user.Username = username
	user.PasswordHash = hash
	user.RoleID = roleID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account outright.
func (s *UserAdminService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserDeleted,
		ActorID:   actorID,
		SubjectID: userID,
	})
	return nil
}

func (s *UserAdminService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
