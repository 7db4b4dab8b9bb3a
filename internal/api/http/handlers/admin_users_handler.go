package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// AdminUsersHandler exposes the manage_users surface.
type AdminUsersHandler struct {
	admin *service.UserAdminService
}

// NewAdminUsersHandler constructs handler.
func NewAdminUsersHandler(adminService *service.UserAdminService) *AdminUsersHandler {
	return &AdminUsersHandler{admin: adminService}
}

// List handles GET /api/admin/users.
func (h *AdminUsersHandler) List(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, userToResponse(user))
	}
	return c.JSON(out)
}

// Create handles POST /api/admin/users.
func (h *AdminUsersHandler) Create(c *fiber.Ctx) error {
	var req dto.AdminUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.admin.CreateUser(c.UserContext(), actorID(c), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(userToResponse(user))
}

// Update handles PUT /api/admin/users.
func (h *AdminUsersHandler) Update(c *fiber.Ctx) error {
	var req dto.AdminUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	if req.ID == "" {
		return apperrors.NewValidationError("_id required", nil)
	}

	user, err := h.admin.UpdateUser(c.UserContext(), req.ID, req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(userToResponse(user))
}

// Delete handles DELETE /api/admin/users.
func (h *AdminUsersHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.admin.DeleteUser(c.UserContext(), actorID(c), req.ID); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User deleted successfully"})
}

func userToResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		RoleID:             user.RoleID,
		RevokedPermissions: domain.PermissionStrings(user.RevokedPermissions),
	}
}
