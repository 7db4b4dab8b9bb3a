package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/repository"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// PortalService is the thin CRUD glue behind the permission gate:
// appointments, prescriptions and medical records. It carries no
// authorization logic of its own beyond ownership checks.
type PortalService struct {
	users         repository.UserRepository
	roles         repository.RoleRepository
	appointments  repository.AppointmentRepository
	prescriptions repository.PrescriptionRepository
	records       repository.PatientRecordRepository
}

// PortalDependencies encapsulates repo requirements for the portal service.
type PortalDependencies struct {
	UserRepo         repository.UserRepository
	RoleRepo         repository.RoleRepository
	AppointmentRepo  repository.AppointmentRepository
	PrescriptionRepo repository.PrescriptionRepository
	RecordRepo       repository.PatientRecordRepository
}

// NewPortalService builds the service.
func NewPortalService(deps PortalDependencies) *PortalService {
	return &PortalService{
		users:         deps.UserRepo,
		roles:         deps.RoleRepo,
		appointments:  deps.AppointmentRepo,
		prescriptions: deps.PrescriptionRepo,
		records:       deps.RecordRepo,
	}
}

// ListDoctors returns all accounts holding the Doctor role.
func (s *PortalService) ListDoctors(ctx context.Context) ([]*domain.User, error) {
	doctorRole, err := s.roles.GetByName(ctx, domain.RoleDoctor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor role", nil)
		}
		return nil, err
	}
	return s.users.ListByRole(ctx, doctorRole.ID)
}

// BookAppointment creates a Pending appointment between patient and doctor.
func (s *PortalService) BookAppointment(ctx context.Context, patientID, doctorID, date, timeSlot, description string) (*domain.Appointment, error) {
	if _, err := s.users.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"user_id": patientID})
		}
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, doctorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", map[string]any{"user_id": doctorID})
		}
		return nil, err
	}

	appt := &domain.Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Date:        date,
		Time:        timeSlot,
		Description: description,
		Status:      domain.AppointmentPending,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// PatientAppointments lists the patient's own appointments.
func (s *PortalService) PatientAppointments(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID)
}

// DoctorAppointments lists appointments assigned to the doctor.
func (s *PortalService) DoctorAppointments(ctx context.Context, doctorID string) ([]*domain.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}

// AllAppointments lists every appointment, for the nurse desk.
func (s *PortalService) AllAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	return s.appointments.ListAll(ctx)
}

// UpdateAppointment lets a patient amend their own appointment while it is
// still Pending. Empty fields keep their current value.
func (s *PortalService) UpdateAppointment(ctx context.Context, patientID, appointmentID, date, timeSlot, description string) (*domain.Appointment, error) {
	appt, err := s.ownedPendingAppointment(ctx, patientID, appointmentID)
	if err != nil {
		return nil, err
	}

	if date != "" {
		appt.Date = date
	}
	if timeSlot != "" {
		appt.Time = timeSlot
	}
	if description != "" {
		appt.Description = description
	}
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// CancelAppointment deletes a patient's own Pending appointment.
func (s *PortalService) CancelAppointment(ctx context.Context, patientID, appointmentID string) error {
	appt, err := s.ownedPendingAppointment(ctx, patientID, appointmentID)
	if err != nil {
		return err
	}
	return s.appointments.Delete(ctx, appt.ID)
}

func (s *PortalService) ownedPendingAppointment(ctx context.Context, patientID, appointmentID string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", map[string]any{"appointment_id": appointmentID})
		}
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, apperrors.NewForbidden("not your appointment")
	}
	if appt.Status != domain.AppointmentPending {
		return nil, apperrors.NewValidationError("only Pending appointments can be changed",
			map[string]any{"status": string(appt.Status)})
	}
	return appt, nil
}

// Prescribe records medication prescribed by a doctor for a patient.
func (s *PortalService) Prescribe(ctx context.Context, doctorID, patientID string, medicines []domain.Medicine, notes string) (*domain.Prescription, error) {
	if _, err := s.users.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"user_id": patientID})
		}
		return nil, err
	}

	prescription := &domain.Prescription{
		PatientID: patientID,
		DoctorID:  doctorID,
		Medicines: medicines,
		Notes:     notes,
	}
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// PatientPrescriptions lists prescriptions issued to the patient.
func (s *PortalService) PatientPrescriptions(ctx context.Context, patientID string) ([]*domain.Prescription, error) {
	return s.prescriptions.ListByPatient(ctx, patientID)
}

// PatientRecords returns the patient's own medical records.
func (s *PortalService) PatientRecords(ctx context.Context, patientID string) ([]*domain.PatientRecord, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// AppendMedicalRecord adds a dated note to a patient's record, authored by
// the given clinician (doctor update or nurse follow-up).
func (s *PortalService) AppendMedicalRecord(ctx context.Context, authorID, patientID, note string) (*domain.PatientRecord, error) {
	if _, err := s.users.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", map[string]any{"user_id": patientID})
		}
		return nil, err
	}
	return s.records.AppendNote(ctx, patientID, authorID, note)
}
