package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// PrescriptionRepository defines persistence access for prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *domain.Prescription) error
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Prescription, error)
}

type prescriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPrescriptionRepository returns a Postgres-backed implementation.
func NewPrescriptionRepository(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepository{pool: pool}
}

func (r *prescriptionRepository) Create(ctx context.Context, p *domain.Prescription) error {
	const query = `
        INSERT INTO prescriptions (patient_id, doctor_id, medicines, notes)
        VALUES ($1, $2, $3, $4)
        RETURNING id, date`

	medicines, err := json.Marshal(p.Medicines)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, query,
		p.PatientID,
		p.DoctorID,
		medicines,
		p.Notes,
	).Scan(&p.ID, &p.Date)
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.Prescription, error) {
	return r.queryPrescriptions(ctx, `
        SELECT id, patient_id, doctor_id, date, medicines, COALESCE(notes, '')
        FROM prescriptions WHERE patient_id=$1 ORDER BY date DESC`, patientID)
}

func (r *prescriptionRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Prescription, error) {
	return r.queryPrescriptions(ctx, `
        SELECT id, patient_id, doctor_id, date, medicines, COALESCE(notes, '')
        FROM prescriptions WHERE doctor_id=$1 ORDER BY date DESC`, doctorID)
}

func (r *prescriptionRepository) queryPrescriptions(ctx context.Context, query string, args ...any) ([]*domain.Prescription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prescriptions []*domain.Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, rows.Err()
}

func scanPrescription(row pgx.Row) (*domain.Prescription, error) {
	var p domain.Prescription
	var medicines []byte
	if err := row.Scan(
		&p.ID,
		&p.PatientID,
		&p.DoctorID,
		&p.Date,
		&medicines,
		&p.Notes,
	); err != nil {
		return nil, err
	}
	if len(medicines) > 0 {
		if err := json.Unmarshal(medicines, &p.Medicines); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
