package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// DoctorsHandler exposes the doctor-facing portal surface.
type DoctorsHandler struct {
	portal *service.PortalService
}

// NewDoctorsHandler constructs handler.
func NewDoctorsHandler(portalService *service.PortalService) *DoctorsHandler {
	return &DoctorsHandler{portal: portalService}
}

// Prescribe handles POST /api/doctor/prescriptions.
func (h *DoctorsHandler) Prescribe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	var req dto.PrescribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	prescription, err := h.portal.Prescribe(c.UserContext(), principal.User.ID, req.PatientID, req.Medicines, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(prescription)
}

// Appointments handles GET /api/doctor/appointments.
func (h *DoctorsHandler) Appointments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	appts, err := h.portal.DoctorAppointments(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(appointmentsToResponse(appts))
}

// UpdateMedicalRecords handles PUT /api/doctor/medical-records.
func (h *DoctorsHandler) UpdateMedicalRecords(c *fiber.Ctx) error {
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
	return c.JSON(record)
}

func appointmentsToResponse(appts []*domain.Appointment) []dto.AppointmentResponse {
	out := make([]dto.AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		out = append(out, dto.AppointmentFromDomain(appt))
	}
	return out
}
