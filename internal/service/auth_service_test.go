package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/config"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/repository/repotest"
	"github.com/spec-kit/clinical-portal/internal/service"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

type authFixture struct {
	svc     *service.AuthService
	users   *repotest.UserRepo
	roles   *repotest.RoleRepo
	records *repotest.RecordRepo
}

func authConfig(verbose bool) config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
		VerboseLoginErrors:    verbose,
	}}
}

func newAuthFixture(t *testing.T, cfg config.Config, limiter *auth.LoginLimiter) *authFixture {
	t.Helper()
	ctx := context.Background()

	roles := repotest.NewRoleRepo()
	patientRole := &domain.Role{
		Name:        domain.RolePatient,
		Permissions: []domain.Permission{domain.PermLogin, domain.PermViewOwnRecords},
	}
	require.NoError(t, roles.Create(ctx, patientRole))

	users := repotest.NewUserRepo()
	records := repotest.NewRecordRepo()

	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		RoleRepo:   roles,
		RecordRepo: records,
		Limiter:    limiter,
	})
	return &authFixture{svc: svc, users: users, roles: roles, records: records}
}

func registerAlice(t *testing.T, f *authFixture) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), service.RegisterInput{
		Username:    "alice",
		Password:    "correct-horse",
		DateOfBirth: "1990-01-02",
		HomeAddress: "12 Main St",
		PhoneNumber: "555-0101",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesPatientWithInitialRecord(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, authConfig(true), nil)

	user := registerAlice(t, f)

	patientRole, err := f.roles.GetByName(ctx, domain.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, patientRole.ID, user.RoleID, "self-registration always yields the Patient role")
	assert.Empty(t, user.RevokedPermissions)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	records, err := f.records.ListByPatient(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Date of Birth: 1990-01-02, Home Address: 12 Main St, Phone Number: 555-0101",
		records[0].Notes)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	registerAlice(t, f)

	_, err := f.svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "another-pass",
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_USERNAME", apperrors.CodeOf(err))
}

func TestLoginIssuesFingerprintedToken(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	user := registerAlice(t, f)

	loggedIn, issued, err := f.svc.Login(context.Background(), "alice", "correct-horse", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := f.svc.TokenManager().Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, issued.Fingerprint, claims.Fingerprint)
	assert.Equal(t, auth.Fingerprint(user.Username, user.ID, issued.IssuedAt), issued.Fingerprint)
}

func TestLoginVerboseErrors(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	registerAlice(t, f)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "nobody", "whatever", "")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.CodeOf(err))
	assert.Equal(t, "user not found", apperrors.ToDomainError(err).Message)

	_, _, err = f.svc.Login(ctx, "alice", "wrong-pass", "")
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", apperrors.CodeOf(err))
	assert.Equal(t, "incorrect password", apperrors.ToDomainError(err).Message)
}

func TestLoginOpaqueErrors(t *testing.T) {
	f := newAuthFixture(t, authConfig(false), nil)
	registerAlice(t, f)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "nobody", "whatever", "")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", apperrors.ToDomainError(err).Message)

	_, _, err = f.svc.Login(ctx, "alice", "wrong-pass", "")
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", apperrors.ToDomainError(err).Message)
}

func TestLoginThrottledAfterRepeatedFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := auth.NewLoginLimiter(client, 2, time.Minute, zap.NewNop())

	f := newAuthFixture(t, authConfig(true), limiter)
	registerAlice(t, f)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := f.svc.Login(ctx, "alice", "wrong-pass", "")
		require.Equal(t, "INVALID_CREDENTIALS", apperrors.CodeOf(err))
	}

	_, _, err := f.svc.Login(ctx, "alice", "correct-horse", "")
	require.Error(t, err)
	assert.Equal(t, "RATE_LIMITED", apperrors.CodeOf(err))
}

func TestLoginResetsThrottleOnSuccess(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := auth.NewLoginLimiter(client, 3, time.Minute, zap.NewNop())

	f := newAuthFixture(t, authConfig(true), limiter)
	registerAlice(t, f)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "alice", "wrong-pass", "")
	require.Equal(t, "INVALID_CREDENTIALS", apperrors.CodeOf(err))

	_, _, err = f.svc.Login(ctx, "alice", "correct-horse", "")
	require.NoError(t, err)

	// The successful login cleared the counter, so a fresh window of
	// attempts is available again.
	for i := 0; i < 3; i++ {
		_, _, err = f.svc.Login(ctx, "alice", "correct-horse", "")
		require.NoError(t, err)
	}
}

func TestRefreshIssuesNewToken(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	registerAlice(t, f)
	ctx := context.Background()

	_, issued, err := f.svc.Login(ctx, "alice", "correct-horse", "")
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, issued.Token, issued.Fingerprint)
	require.NoError(t, err)

	claims, err := f.svc.TokenManager().Verify(refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRefreshRejectsForeignFingerprint(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	registerAlice(t, f)
	ctx := context.Background()

	_, issued, err := f.svc.Login(ctx, "alice", "correct-horse", "")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, issued.Token, auth.Fingerprint("mallory", "user-99", time.Now()))
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)

	_, err := f.svc.Refresh(context.Background(), "not-a-token", "whatever")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	f := newAuthFixture(t, authConfig(true), nil)
	user := registerAlice(t, f)
	ctx := context.Background()

	_, issued, err := f.svc.Login(ctx, "alice", "correct-horse", "")
	require.NoError(t, err)
	require.NoError(t, f.users.Delete(ctx, user.ID))

	_, err = f.svc.Refresh(ctx, issued.Token, issued.Fingerprint)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.CodeOf(err))
}
