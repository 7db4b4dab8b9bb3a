package domain

import "time"

// Medicine is one prescribed item.
type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription records medication prescribed by a doctor to a patient.
type Prescription struct {
	ID        string
	PatientID string
	DoctorID  string
	Date      time.Time
	Medicines []Medicine
	Notes     string
}
