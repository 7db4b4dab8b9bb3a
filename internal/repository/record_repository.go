package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// PatientRecordRepository defines persistence access for medical records.
type PatientRecordRepository interface {
	Create(ctx context.Context, record *domain.PatientRecord) error
	ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientRecord, error)
	AppendNote(ctx context.Context, patientID, doctorID, note string) (*domain.PatientRecord, error)
}

type recordRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRecordRepository returns a Postgres-backed implementation.
func NewPatientRecordRepository(pool *pgxpool.Pool) PatientRecordRepository {
	return &recordRepository{pool: pool}
}

func (r *recordRepository) Create(ctx context.Context, record *domain.PatientRecord) error {
	const query = `
        INSERT INTO patient_records (patient_id, doctor_id, appointment_id, notes)
        VALUES ($1, $2, $3, $4)
        RETURNING id, date`

	return r.pool.QueryRow(ctx, query,
		record.PatientID,
		record.DoctorID,
		record.AppointmentID,
		record.Notes,
	).Scan(&record.ID, &record.Date)
}

func (r *recordRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.PatientRecord, error) {
	const query = `
        SELECT id, patient_id, doctor_id, appointment_id, date, COALESCE(notes, '')
        FROM patient_records WHERE patient_id=$1 ORDER BY date DESC`

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.PatientRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// AppendNote adds a dated entry authored by the given doctor.
func (r *recordRepository) AppendNote(ctx context.Context, patientID, doctorID, note string) (*domain.PatientRecord, error) {
	record := &domain.PatientRecord{
		PatientID: patientID,
		DoctorID:  &doctorID,
		Notes:     note,
	}
	if err := r.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func scanRecord(row pgx.Row) (*domain.PatientRecord, error) {
	var record domain.PatientRecord
	if err := row.Scan(
		&record.ID,
		&record.PatientID,
		&record.DoctorID,
		&record.AppointmentID,
		&record.Date,
		&record.Notes,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
