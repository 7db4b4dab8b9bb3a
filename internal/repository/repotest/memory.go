// Package repotest provides in-memory repository implementations shared by
// tests across packages. Lookups mirror the Postgres implementations by
// returning pgx.ErrNoRows for missing records.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// RoleRepo is an in-memory repository.RoleRepository. It counts writes so
// reconciliation tests can assert idempotency.
type RoleRepo struct {
	mu sync.Mutex

	roles   map[string]*domain.Role
	nextID  int
	Creates int
	Updates int
}

// NewRoleRepo returns an empty role store.
func NewRoleRepo() *RoleRepo {
	return &RoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *RoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return fmt.Errorf("duplicate role name %q", role.Name)
		}
	}
	r.nextID++
	role.ID = fmt.Sprintf("role-%d", r.nextID)
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	r.roles[role.ID] = cloneRole(role)
	r.Creates++
	return nil
}

func (r *RoleRepo) GetAll(_ context.Context) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, cloneRole(role))
	}
	return out, nil
}

func (r *RoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneRole(role), nil
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			return cloneRole(role), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *RoleRepo) UpdatePermissions(_ context.Context, id string, permissions []domain.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	role.Permissions = append([]domain.Permission(nil), permissions...)
	role.UpdatedAt = time.Now()
	r.Updates++
	return nil
}

// DeleteByID removes a role outright, simulating the data-integrity fault of
// a role deleted while tokens referencing it are live.
func (r *RoleRepo) DeleteByID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, id)
}

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu sync.Mutex

	users  map[string]*domain.User
	nextID int
}

// NewUserRepo returns an empty user store.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*domain.User)}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return fmt.Errorf("duplicate username %q", user.Username)
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Username = user.Username
	stored.PasswordHash = user.PasswordHash
	stored.RoleID = user.RoleID
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, cloneUser(user))
	}
	return out, nil
}

func (r *UserRepo) ListByRole(_ context.Context, roleID string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, user := range r.users {
		if user.RoleID == roleID {
			out = append(out, cloneUser(user))
		}
	}
	return out, nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(user), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *UserRepo) UpdateRole(_ context.Context, userID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RoleID = roleID
	user.UpdatedAt = time.Now()
	return nil
}

func (r *UserRepo) AddRevokedPermission(_ context.Context, userID string, permission domain.Permission) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for _, revoked := range user.RevokedPermissions {
		if revoked == permission {
			return false, nil
		}
	}
	user.RevokedPermissions = append(user.RevokedPermissions, permission)
	return true, nil
}

func (r *UserRepo) RemoveRevokedPermission(_ context.Context, userID string, permission domain.Permission) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for i, revoked := range user.RevokedPermissions {
		if revoked == permission {
			user.RevokedPermissions = append(user.RevokedPermissions[:i], user.RevokedPermissions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// AppointmentRepo is an in-memory repository.AppointmentRepository.
type AppointmentRepo struct {
	mu sync.Mutex

	appts  map[string]*domain.Appointment
	nextID int
}

// NewAppointmentRepo returns an empty appointment store.
func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{appts: make(map[string]*domain.Appointment)}
}

func (r *AppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	appt.ID = fmt.Sprintf("appt-%d", r.nextID)
	if appt.Status == "" {
		appt.Status = domain.AppointmentPending
	}
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

func (r *AppointmentRepo) Update(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[appt.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *appt
	r.appts[appt.ID] = &stored
	return nil
}

func (r *AppointmentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.appts, id)
	return nil
}

func (r *AppointmentRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *appt
	return &copied, nil
}

func (r *AppointmentRepo) ListByPatient(_ context.Context, patientID string) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool { return a.PatientID == patientID })
}

func (r *AppointmentRepo) ListByDoctor(_ context.Context, doctorID string) ([]*domain.Appointment, error) {
	return r.filter(func(a *domain.Appointment) bool { return a.DoctorID == doctorID })
}

func (r *AppointmentRepo) ListAll(_ context.Context) ([]*domain.Appointment, error) {
	return r.filter(func(*domain.Appointment) bool { return true })
}

func (r *AppointmentRepo) filter(keep func(*domain.Appointment) bool) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Appointment
	for _, appt := range r.appts {
		if keep(appt) {
			copied := *appt
			out = append(out, &copied)
		}
	}
	return out, nil
}

// PrescriptionRepo is an in-memory repository.PrescriptionRepository.
type PrescriptionRepo struct {
	mu sync.Mutex

	prescriptions []*domain.Prescription
	nextID        int
}

// NewPrescriptionRepo returns an empty prescription store.
func NewPrescriptionRepo() *PrescriptionRepo {
	return &PrescriptionRepo{}
}

func (r *PrescriptionRepo) Create(_ context.Context, p *domain.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = fmt.Sprintf("rx-%d", r.nextID)
	p.Date = time.Now()
	stored := *p
	r.prescriptions = append(r.prescriptions, &stored)
	return nil
}

func (r *PrescriptionRepo) ListByPatient(_ context.Context, patientID string) ([]*domain.Prescription, error) {
	return r.filter(func(p *domain.Prescription) bool { return p.PatientID == patientID })
}

func (r *PrescriptionRepo) ListByDoctor(_ context.Context, doctorID string) ([]*domain.Prescription, error) {
	return r.filter(func(p *domain.Prescription) bool { return p.DoctorID == doctorID })
}

func (r *PrescriptionRepo) filter(keep func(*domain.Prescription) bool) ([]*domain.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Prescription
	for _, p := range r.prescriptions {
		if keep(p) {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

// RecordRepo is an in-memory repository.PatientRecordRepository.
type RecordRepo struct {
	mu sync.Mutex

	records []*domain.PatientRecord
	nextID  int
}

// NewRecordRepo returns an empty record store.
func NewRecordRepo() *RecordRepo {
	return &RecordRepo{}
}

func (r *RecordRepo) Create(_ context.Context, record *domain.PatientRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = fmt.Sprintf("record-%d", r.nextID)
	record.Date = time.Now()
	stored := *record
	r.records = append(r.records, &stored)
	return nil
}

func (r *RecordRepo) ListByPatient(_ context.Context, patientID string) ([]*domain.PatientRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PatientRecord
	for _, record := range r.records {
		if record.PatientID == patientID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *RecordRepo) AppendNote(ctx context.Context, patientID, doctorID, note string) (*domain.PatientRecord, error) {
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

// AuditRepo is an in-memory repository.AuditRepository.
type AuditRepo struct {
	mu sync.Mutex

	entries []*domain.AuditEntry
	nextID  int
}

// NewAuditRepo returns an empty audit store.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("audit-%d", r.nextID)
	entry.CreatedAt = time.Now()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *AuditRepo) ListRecent(_ context.Context, limit int) ([]*domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		copied := *r.entries[i]
		out = append(out, &copied)
	}
	return out, nil
}

// Entries returns everything recorded so far, oldest first.
func (r *AuditRepo) Entries() []*domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.AuditEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		out = append(out, &copied)
	}
	return out
}

func cloneRole(role *domain.Role) *domain.Role {
	copied := *role
	copied.Permissions = append([]domain.Permission(nil), role.Permissions...)
	return &copied
}

func cloneUser(user *domain.User) *domain.User {
	copied := *user
	copied.RevokedPermissions = append([]domain.Permission(nil), user.RevokedPermissions...)
	return &copied
}
