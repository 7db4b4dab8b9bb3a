package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinical-portal/internal/api/http/handlers"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Roles      *handlers.RolesHandler
	Patients   *handlers.PatientsHandler
	Doctors    *handlers.DoctorsHandler
	Nurses     *handlers.NursesHandler
	Access     *handlers.AccessHandler
	AdminUsers *handlers.AdminUsersHandler
	Gate       *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Registration, login, refresh, the roles
// listing and the health probes are the explicit public allow-list; every
// other route passes through the permission gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Get("/roles", cfg.Roles.List)
	api.Post("/auth/refresh", cfg.Auth.Refresh)

	patient := api.Group("/patient")
	patient.Post("/register", cfg.Auth.Register)
	patient.Post("/login", cfg.Auth.Login)
	patient.Get("/myRecords", cfg.Gate.RequirePermission(domain.PermViewOwnRecords), cfg.Patients.MyRecords)
	patient.Get("/doctors", cfg.Gate.RequirePermission(domain.PermViewDoctors), cfg.Patients.Doctors)
	patient.Post("/appointments/:doctorId", cfg.Gate.RequirePermission(domain.PermBookAppointment), cfg.Patients.BookAppointment)
	patient.Get("/appointments", cfg.Gate.RequirePermission(domain.PermViewAppointmentsForPatient), cfg.Patients.Appointments)
	patient.Put("/appointments/:appointmentId", cfg.Gate.RequirePermission(domain.PermUpdateAppointment), cfg.Patients.UpdateAppointment)
	patient.Delete("/appointments/:appointmentId", cfg.Gate.RequirePermission(domain.PermCancelPendingAppointment), cfg.Patients.CancelAppointment)
	patient.Get("/prescriptions", cfg.Gate.RequirePermission(domain.PermViewPrescription), cfg.Patients.Prescriptions)

	doctor := api.Group("/doctor")
	doctor.Post("/prescriptions", cfg.Gate.RequirePermission(domain.PermPrescribeMedication), cfg.Doctors.Prescribe)
	doctor.Get("/appointments", cfg.Gate.RequirePermission(domain.PermViewAppointments), cfg.Doctors.Appointments)
	doctor.Put("/medical-records", cfg.Gate.RequirePermission(domain.PermUpdateMedicalRecords), cfg.Doctors.UpdateMedicalRecords)

	nurse := api.Group("/nurse")
	nurse.Get("/appointments", cfg.Gate.RequirePermission(domain.PermManageAppointments), cfg.Nurses.Appointments)
	nurse.Post("/follow-ups", cfg.Gate.RequirePermission(domain.PermPatientFollowUp), cfg.Nurses.FollowUp)

	admin := api.Group("/admin")
	admin.Get("/users", cfg.Gate.RequirePermission(domain.PermManageUsers), cfg.AdminUsers.List)
	admin.Post("/users", cfg.Gate.RequirePermission(domain.PermManageUsers), cfg.AdminUsers.Create)
	admin.Put("/users", cfg.Gate.RequirePermission(domain.PermManageUsers), cfg.AdminUsers.Update)
	admin.Delete("/users", cfg.Gate.RequirePermission(domain.PermManageUsers), cfg.AdminUsers.Delete)
	admin.Get("/access", cfg.Gate.RequirePermission(domain.PermManageAccess), cfg.Access.ListRoles)
	admin.Post("/access", cfg.Gate.RequirePermission(domain.PermManageAccess), cfg.Access.AssignRole)
	admin.Post("/revoke", cfg.Gate.RequirePermission(domain.PermManageAccess), cfg.Access.Revoke)
	admin.Post("/restore", cfg.Gate.RequirePermission(domain.PermManageAccess), cfg.Access.Restore)
}
