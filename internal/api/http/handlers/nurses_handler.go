package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// NursesHandler exposes the nurse desk surface.
type NursesHandler struct {
	portal *service.PortalService
}

// NewNursesHandler constructs handler.
func NewNursesHandler(portalService *service.PortalService) *NursesHandler {
	return &NursesHandler{portal: portalService}
}

// Appointments handles GET /api/nurse/appointments.
func (h *NursesHandler) Appointments(c *fiber.Ctx) error {
	appts, err := h.portal.AllAppointments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(appointmentsToResponse(appts))
}

// FollowUp handles POST /api/nurse/follow-ups.
func (h *NursesHandler) FollowUp(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	var req dto.MedicalRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	record, err := h.portal.AppendMedicalRecord(c.UserContext(), principal.User.ID, req.PatientID, req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(record)
}
