package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/service"
)

// AuthHandler exposes registration, login and refresh.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/patient/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		HomeAddress: req.HomeAddress,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":       user.ID,
				"username": user.Username,
			},
			"message": "User registered successfully. Please log in.",
		},
	})
}

// Login handles POST /api/patient/login. The fingerprint never travels in
// the body; it is mirrored to the client on its own scoped cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	_, issued, err := h.auth.Login(c.UserContext(), req.Username, req.Password, c.IP())
	if err != nil {
		return err
	}

	setFingerprintCookie(c, issued)
	return c.JSON(dto.TokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt})
}

// Refresh handles POST /api/auth/refresh. The presented fingerprint cookie
// must match the refresh credential; a fresh token and cookie replace both.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	issued, err := h.auth.Refresh(c.UserContext(), req.RefreshToken, c.Cookies(auth.FingerprintCookie))
	if err != nil {
		return err
	}

	setFingerprintCookie(c, issued)
	return c.JSON(dto.TokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt})
}

func setFingerprintCookie(c *fiber.Ctx, issued *auth.IssuedToken) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.FingerprintCookie,
		Value:    issued.Fingerprint,
		Expires:  issued.ExpiresAt,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
