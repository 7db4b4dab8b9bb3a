package domain

// Permission is an atomic capability gating one action. The vocabulary is
// closed: route guards and role catalogs may only use the constants below,
// and catalogs are validated against the set at load time.
type Permission string

const (
	PermRegisterAccount            Permission = "register_account"
	PermLogin                      Permission = "login"
	PermBookAppointment            Permission = "book_appointment"
	PermRequestDoctor              Permission = "request_doctor"
	PermViewConsultation           Permission = "view_consultation"
	PermViewPrescription           Permission = "view_prescription"
	PermViewOwnRecords             Permission = "view_own_records"
	PermViewDoctors                Permission = "view_doctors"
	PermViewAppointmentsForPatient Permission = "view_appointments_for_patient"
	PermUpdateAppointment          Permission = "update_appointment"
	PermCancelPendingAppointment   Permission = "cancel_appointment_on_pending"

	PermConductConsultation  Permission = "conduct_consultation"
	PermPrescribeMedication  Permission = "prescribe_medication"
	PermViewAppointments     Permission = "view_appointments"
	PermUpdateMedicalRecords Permission = "update_medical_records"

	PermManageAppointments Permission = "manage_appointments"
	PermPatientFollowUp    Permission = "patient_follow_up"

	PermManageUsers  Permission = "manage_users"
	PermManageAccess Permission = "manage_access"
	PermAnalyzeData  Permission = "analyze_data"
)

var permissionVocabulary = map[Permission]struct{}{
	PermRegisterAccount:            {},
	PermLogin:                      {},
	PermBookAppointment:            {},
	PermRequestDoctor:              {},
	PermViewConsultation:           {},
	PermViewPrescription:           {},
	PermViewOwnRecords:             {},
	PermViewDoctors:                {},
	PermViewAppointmentsForPatient: {},
	PermUpdateAppointment:          {},
	PermCancelPendingAppointment:   {},
	PermConductConsultation:        {},
	PermPrescribeMedication:        {},
	PermViewAppointments:           {},
	PermUpdateMedicalRecords:       {},
	PermManageAppointments:         {},
	PermPatientFollowUp:            {},
	PermManageUsers:                {},
	PermManageAccess:               {},
	PermAnalyzeData:                {},
}

// Known reports whether the permission belongs to the closed vocabulary.
func (p Permission) Known() bool {
	_, ok := permissionVocabulary[p]
	return ok
}

// PermissionSet is an order-independent set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from a slice.
func NewPermissionSet(perms []Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Contains reports set membership.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Equal compares two sets regardless of insertion order.
func (s PermissionSet) Equal(other PermissionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for p := range s {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// PermissionStrings converts a permission slice to its wire representation.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// PermissionsFromStrings converts stored strings back to typed permissions.
func PermissionsFromStrings(values []string) []Permission {
	out := make([]Permission, len(values))
	for i, v := range values {
		out[i] = Permission(v)
	}
	return out
}
