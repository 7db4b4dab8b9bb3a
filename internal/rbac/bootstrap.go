package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/repository"
)

// reservedAdminUsernames lists the usernames the bootstrap recognizes as the
// administrator credential. "Admin" is the current reserved name; the others
// existed in earlier deployments and are honored so restarts never create a
// second administrator.
var reservedAdminUsernames = []string{"Admin", "admin", "Administrator"}

// Bootstrapper guarantees exactly one administrator credential exists.
type Bootstrapper struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewBootstrapper builds the credential bootstrap routine.
func NewBootstrapper(users repository.UserRepository, roles repository.RoleRepository, bcryptCost int, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{users: users, roles: roles, bcryptCost: bcryptCost, logger: logger}
}

// EnsureAdmin creates the administrator credential from the provisioning
// secret if no reserved username exists yet. Upsert semantics: safe to run on
// every startup.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context, adminPassword string) (*domain.User, error) {
	for _, username := range reservedAdminUsernames {
		existing, err := b.users.GetByUsername(ctx, username)
		if err == nil {
			b.logger.Info("administrator credential already exists", zap.String("username", username))
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	adminRole, err := b.roles.GetByName(ctx, domain.RoleAdministrator)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(adminPassword, b.bcryptCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.User{
		Username:           reservedAdminUsernames[0],
		PasswordHash:       hash,
		RoleID:             adminRole.ID,
		RevokedPermissions: []domain.Permission{},
	}
	if err := b.users.Create(ctx, admin); err != nil {
		return nil, err
	}

	b.logger.Info("administrator credential created", zap.String("username", admin.Username))
	return admin, nil
}
