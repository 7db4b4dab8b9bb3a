package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/dto"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// PatientsHandler exposes the patient-facing portal surface.
type PatientsHandler struct {
	portal *service.PortalService
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(portalService *service.PortalService) *PatientsHandler {
	return &PatientsHandler{portal: portalService}
}

// MyRecords handles GET /api/patient/myRecords.
func (h *PatientsHandler) MyRecords(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	records, err := h.portal.PatientRecords(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"username": principal.User.Username,
		"records":  records,
	})
}

// Doctors handles GET /api/patient/doctors.
func (h *PatientsHandler) Doctors(c *fiber.Ctx) error {
	doctors, err := h.portal.ListDoctors(c.UserContext())
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(doctors))
	for _, doctor := range doctors {
		out = append(out, fiber.Map{"id": doctor.ID, "username": doctor.Username})
	}
	return c.JSON(out)
}

// BookAppointment handles POST /api/patient/appointments/:doctorId.
func (h *PatientsHandler) BookAppointment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	var req dto.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	appt, err := h.portal.BookAppointment(c.UserContext(), principal.User.ID, c.Params("doctorId"), req.Date, req.Time, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.AppointmentFromDomain(appt))
}

// Appointments handles GET /api/patient/appointments.
func (h *PatientsHandler) Appointments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	appts, err := h.portal.PatientAppointments(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(appointmentsToResponse(appts))
}

// UpdateAppointment handles PUT /api/patient/appointments/:appointmentId.
func (h *PatientsHandler) UpdateAppointment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	var req dto.UpdateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	appt, err := h.portal.UpdateAppointment(c.UserContext(), principal.User.ID, c.Params("appointmentId"), req.Date, req.Time, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.AppointmentFromDomain(appt))
}

// CancelAppointment handles DELETE /api/patient/appointments/:appointmentId.
func (h *PatientsHandler) CancelAppointment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	if err := h.portal.CancelAppointment(c.UserContext(), principal.User.ID, c.Params("appointmentId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Appointment deleted successfully."})
}

// Prescriptions handles GET /api/patient/prescriptions.
func (h *PatientsHandler) Prescriptions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewForbidden("forbidden")
	}

	prescriptions, err := h.portal.PatientPrescriptions(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(prescriptions)
}
