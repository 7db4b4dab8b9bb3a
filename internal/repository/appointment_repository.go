package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// AppointmentRepository defines persistence access for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Appointment, error)
	ListAll(ctx context.Context) ([]*domain.Appointment, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository returns a Postgres-backed implementation.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `id, patient_id, doctor_id, date, time, COALESCE(description, ''), status`

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (patient_id, doctor_id, date, time, description, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`

	if appt.Status == "" {
		appt.Status = domain.AppointmentPending
	}
	return r.pool.QueryRow(ctx, query,
		appt.PatientID,
		appt.DoctorID,
		appt.Date,
		appt.Time,
		appt.Description,
		appt.Status,
	).Scan(&appt.ID)
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET date=$1, time=$2, description=$3, status=$4
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		appt.Date,
		appt.Time,
		appt.Description,
		appt.Status,
		appt.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id=$1`, id))
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error) {
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_id=$1 ORDER BY date, time`, patientID)
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Appointment, error) {
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE doctor_id=$1 ORDER BY date, time`, doctorID)
}

func (r *appointmentRepository) ListAll(ctx context.Context) ([]*domain.Appointment, error) {
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY date, time`)
}

func (r *appointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]*domain.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []*domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.Date,
		&appt.Time,
		&appt.Description,
		&appt.Status,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
