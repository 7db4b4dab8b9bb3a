package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/clinical-portal/internal/api/http"
	"github.com/spec-kit/clinical-portal/internal/api/http/handlers"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/config"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/observability"
	"github.com/spec-kit/clinical-portal/internal/persistence"
	"github.com/spec-kit/clinical-portal/internal/rbac"
	"github.com/spec-kit/clinical-portal/internal/repository/repotest"
	"github.com/spec-kit/clinical-portal/internal/service"
	"github.com/spec-kit/clinical-portal/internal/worker"
)

const adminPassword = "admin-secret"

type portalApp struct {
	app    *fiber.App
	users  *repotest.UserRepo
	audits *repotest.AuditRepo
}

// newPortalApp assembles the whole HTTP surface over in-memory stores,
// mirroring the wiring in cmd/api.
func newPortalApp(t *testing.T) *portalApp {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	roles := repotest.NewRoleRepo()
	users := repotest.NewUserRepo()
	appointments := repotest.NewAppointmentRepo()
	prescriptions := repotest.NewPrescriptionRepo()
	records := repotest.NewRecordRepo()
	audits := repotest.NewAuditRepo()

	_, err := rbac.NewReconciler(roles, logger).Reconcile(ctx, rbac.DefaultCatalog())
	require.NoError(t, err)
	_, err = rbac.NewBootstrapper(users, roles, bcrypt.MinCost, logger).EnsureAdmin(ctx, adminPassword)
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, audits, logger)

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		VerboseLoginErrors:    true,
	}}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		RoleRepo:   roles,
		RecordRepo: records,
		Dispatcher: dispatcher,
	})
	accessService := service.NewAccessService(users, roles, dispatcher)
	adminService := service.NewUserAdminService(users, roles, dispatcher, bcrypt.MinCost)
	portalService := service.NewPortalService(service.PortalDependencies{
		UserRepo:         users,
		RoleRepo:         roles,
		AppointmentRepo:  appointments,
		PrescriptionRepo: prescriptions,
		RecordRepo:       records,
	})

	gate := auth.NewMiddleware(authService.TokenManager(), users, roles)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler("clinical-portal", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:       handlers.NewAuthHandler(authService),
		Roles:      handlers.NewRolesHandler(accessService),
		Patients:   handlers.NewPatientsHandler(portalService),
		Doctors:    handlers.NewDoctorsHandler(portalService),
		Nurses:     handlers.NewNursesHandler(portalService),
		Access:     handlers.NewAccessHandler(accessService),
		AdminUsers: handlers.NewAdminUsersHandler(adminService),
		Gate:       gate,
	})

	return &portalApp{app: app, users: users, audits: audits}
}

func (p *portalApp) do(t *testing.T, method, target, token, fingerprint string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if fingerprint != "" {
		req.AddCookie(&http.Cookie{Name: auth.FingerprintCookie, Value: fingerprint})
	}

	resp, err := p.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (p *portalApp) register(t *testing.T, username, password string) string {
	t.Helper()
	resp := p.do(t, http.MethodPost, "/api/patient/register", "", "", fiber.Map{
		"username":    username,
		"password":    password,
		"dateOfBirth": "1990-01-02",
		"homeAddress": "12 Main St",
		"phoneNumber": "555-0101",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)
	return body.Data.User.ID
}

// login returns the bearer token and the fingerprint mirrored on the cookie.
func (p *portalApp) login(t *testing.T, username, password string) (string, string) {
	t.Helper()
	resp := p.do(t, http.MethodPost, "/api/patient/login", "", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	fingerprint := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.FingerprintCookie {
			fingerprint = cookie.Value
			assert.True(t, cookie.HttpOnly, "fingerprint cookie must be HttpOnly")
			assert.True(t, cookie.Secure, "fingerprint cookie must be Secure")
		}
	}
	require.NotEmpty(t, fingerprint, "login must set the fingerprint cookie")

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token, fingerprint
}

func TestPublicRoutesNeedNoToken(t *testing.T) {
	p := newPortalApp(t)

	resp := p.do(t, http.MethodGet, "/health/live", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = p.do(t, http.MethodGet, "/api/roles", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRevokeRestoreLifecycle(t *testing.T) {
	p := newPortalApp(t)
	aliceID := p.register(t, "alice", "correct-horse")
	aliceToken, aliceFP := p.login(t, "alice", "correct-horse")
	adminToken, adminFP := p.login(t, "Admin", adminPassword)

	resp := p.do(t, http.MethodGet, "/api/patient/myRecords", aliceToken, aliceFP, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = p.do(t, http.MethodPost, "/api/admin/revoke", adminToken, adminFP, fiber.Map{
		"userId":     aliceID,
		"permission": "view_own_records",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg struct {
		Message string `json:"message"`
	}
	decodeJSON(t, resp, &msg)
	assert.Equal(t, "Permission revoked successfully", msg.Message)

	// Same still-valid token, next request: the revocation already bites.
	resp = p.do(t, http.MethodGet, "/api/patient/myRecords", aliceToken, aliceFP, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Untouched permissions keep working.
	resp = p.do(t, http.MethodGet, "/api/patient/doctors", aliceToken, aliceFP, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = p.do(t, http.MethodPost, "/api/admin/revoke", adminToken, adminFP, fiber.Map{
		"userId":     aliceID,
		"permission": "view_own_records",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &msg)
	assert.Equal(t, "Permission already revoked", msg.Message)

	resp = p.do(t, http.MethodPost, "/api/admin/restore", adminToken, adminFP, fiber.Map{
		"userId":     aliceID,
		"permission": "view_own_records",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = p.do(t, http.MethodGet, "/api/patient/myRecords", aliceToken, aliceFP, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The whole lifecycle landed in the audit trail.
	types := make([]string, 0)
	for _, entry := range p.audits.Entries() {
		types = append(types, entry.EventType)
	}
	assert.Contains(t, types, "user_registered")
	assert.Contains(t, types, "permission_revoked")
	assert.Contains(t, types, "permission_restored")
}

func TestFingerprintFromAnotherSessionIsRejected(t *testing.T) {
	p := newPortalApp(t)
	p.register(t, "alice", "correct-horse")
	p.register(t, "bob", "correct-horse")

	aliceToken, _ := p.login(t, "alice", "correct-horse")
	_, bobFP := p.login(t, "bob", "correct-horse")

	resp := p.do(t, http.MethodGet, "/api/patient/myRecords", aliceToken, bobFP, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPatientCannotReachAdminSurface(t *testing.T) {
	p := newPortalApp(t)
	p.register(t, "alice", "correct-horse")
	aliceToken, aliceFP := p.login(t, "alice", "correct-horse")

	resp := p.do(t, http.MethodGet, "/api/admin/users", aliceToken, aliceFP, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRefreshRotatesTokenAndCookie(t *testing.T) {
	p := newPortalApp(t)
	p.register(t, "alice", "correct-horse")
	token, fingerprint := p.login(t, "alice", "correct-horse")

	resp := p.do(t, http.MethodPost, "/api/auth/refresh", "", fingerprint, fiber.Map{
		"refreshToken": token,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	newFP := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.FingerprintCookie {
			newFP = cookie.Value
		}
	}
	require.NotEmpty(t, newFP)

	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.Token)

	resp = p.do(t, http.MethodGet, "/api/patient/myRecords", body.Token, newFP, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshRejectsMismatchedCookie(t *testing.T) {
	p := newPortalApp(t)
	p.register(t, "alice", "correct-horse")
	p.register(t, "bob", "correct-horse")
	aliceToken, _ := p.login(t, "alice", "correct-horse")
	_, bobFP := p.login(t, "bob", "correct-horse")

	resp := p.do(t, http.MethodPost, "/api/auth/refresh", "", bobFP, fiber.Map{
		"refreshToken": aliceToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	p := newPortalApp(t)

	resp := p.do(t, http.MethodPost, "/api/patient/register", "", "", fiber.Map{
		"username": "al",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
