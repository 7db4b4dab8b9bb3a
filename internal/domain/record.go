package domain

import "time"

// PatientRecord is the running medical record for a patient. Created empty at
// registration and appended to by clinical staff.
type PatientRecord struct {
	ID            string
	PatientID     string
	DoctorID      *string
	AppointmentID *string
	Date          time.Time
	Notes         string
}
