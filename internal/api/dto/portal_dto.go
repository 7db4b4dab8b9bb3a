package dto

import "github.com/spec-kit/clinical-portal/internal/domain"

// BookAppointmentRequest payload for POST /api/patient/appointments/:doctorId.
type BookAppointmentRequest struct {
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Description string `json:"description"`
}

// UpdateAppointmentRequest payload for amending a Pending appointment.
// All fields optional; empty fields keep their current value.
type UpdateAppointmentRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// AppointmentResponse is the wire form of an appointment.
type AppointmentResponse struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient"`
	DoctorID    string `json:"doctor"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// AppointmentFromDomain converts a domain appointment.
func AppointmentFromDomain(appt *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		DoctorID:    appt.DoctorID,
		Date:        appt.Date,
		Time:        appt.Time,
		Description: appt.Description,
		Status:      string(appt.Status),
	}
}

// PrescribeRequest payload for POST /api/doctor/prescriptions.
type PrescribeRequest struct {
	PatientID string            `json:"patientId" validate:"required"`
	Medicines []domain.Medicine `json:"medicines" validate:"required,min=1,dive"`
	Notes     string            `json:"notes"`
}

// MedicalRecordRequest payload for doctor record updates and nurse follow-ups.
type MedicalRecordRequest struct {
	PatientID string `json:"patientId" validate:"required"`
	Note      string `json:"note" validate:"required"`
}
