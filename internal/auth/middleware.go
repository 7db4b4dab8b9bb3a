package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/repository"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller with its live role resolution.
type Principal struct {
	User   *domain.User
	Role   *domain.Role
	Claims *Claims
}

// Middleware is the per-request authorization gate.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	roles  repository.RoleRepository
}

// NewMiddleware constructs the gate.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, roles repository.RoleRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users, roles: roles}
}

// RequirePermission admits the request only when the whole gate passes:
// bearer token present, signature and expiry valid, role resolved live, user
// resolved live, permission granted by the role and not revoked for the user,
// and the fingerprint cookie matching the one embedded in the token. Role and
// deny-list are re-resolved from the store on every request so administrative
// changes take effect without waiting for token expiry.
func (m *Middleware) RequirePermission(permission domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperrors.NewTokenMissing()
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			return apperrors.NewInvalidToken()
		}

		role, err := m.roles.GetByID(c.UserContext(), claims.RoleID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewRoleNotFound(claims.RoleID)
			}
			return apperrors.MapError(err)
		}

		user, err := m.users.GetByID(c.UserContext(), claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbidden("forbidden")
			}
			return apperrors.MapError(err)
		}

		if !role.Grants(permission) || user.HasRevoked(permission) {
			return apperrors.NewForbidden("forbidden")
		}

		if !FingerprintsMatch(c.Cookies(FingerprintCookie), claims.Fingerprint) {
			return apperrors.NewForbidden("forbidden")
		}

		c.Locals(principalKey, &Principal{User: user, Role: role, Claims: claims})
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
