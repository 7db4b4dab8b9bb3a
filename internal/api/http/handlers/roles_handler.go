package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/service"
)

// RolesHandler exposes the public roles listing.
type RolesHandler struct {
	access *service.AccessService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(accessService *service.AccessService) *RolesHandler {
	return &RolesHandler{access: accessService}
}

// List handles GET /api/roles. Public: role names and permission strings are
// not secret, only the grants are.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	roles, err := h.access.ListRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rolesToResponse(roles))
}
