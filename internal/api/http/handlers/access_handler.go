package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/service"
)

// AccessHandler exposes the manage_access surface.
type AccessHandler struct {
	access *service.AccessService
}

// NewAccessHandler constructs handler.
func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{access: accessService}
}

// ListRoles handles GET /api/admin/access.
func (h *AccessHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.access.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rolesToResponse(roles))
}

// AssignRole handles POST /api/admin/access.
func (h *AccessHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.access.AssignRole(c.UserContext(), actorID(c), req.UserID, req.Role); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Role granted successfully"})
}

// Revoke handles POST /api/admin/revoke.
func (h *AccessHandler) Revoke(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	already, err := h.access.RevokePermission(c.UserContext(), actorID(c), req.UserID, domain.Permission(req.Permission))
	if err != nil {
		return err
	}
	if already {
		return c.JSON(dto.MessageResponse{Message: "Permission already revoked"})
	}
	return c.JSON(dto.MessageResponse{Message: "Permission revoked successfully"})
}

// Restore handles POST /api/admin/restore.
func (h *AccessHandler) Restore(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.access.RestorePermission(c.UserContext(), actorID(c), req.UserID, domain.Permission(req.Permission)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Permission restored successfully"})
}

func rolesToResponse(roles []*domain.Role) []dto.RoleResponse {
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, dto.RoleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Permissions: domain.PermissionStrings(role.Permissions),
		})
	}
	return out
}

func actorID(c *fiber.Ctx) string {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.User.ID
	}
	return ""
}
