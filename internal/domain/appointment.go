package domain

// AppointmentStatus enumerates the appointment lifecycle.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// Appointment links a patient and a doctor at a requested date/time.
// Patients may update or cancel only their own appointments while still
// Pending.
type Appointment struct {
	ID          string
	PatientID   string
	DoctorID    string
	Date        string
	Time        string
	Description string
	Status      AppointmentStatus
}
