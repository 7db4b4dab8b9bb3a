package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/config"
	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/repository"
	apperrors "github.com/spec-kit/clinical-portal/pkg/util"
)

// RegisterInput carries the self-service registration payload.
type RegisterInput struct {
	Username    string
	Password    string
	DateOfBirth string
	HomeAddress string
	PhoneNumber string
}

// AuthService coordinates registration, login and token refresh.
type AuthService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	records    repository.PatientRecordRepository
	tokens     *auth.TokenManager
	limiter    *auth.LoginLimiter
	dispatcher events.Dispatcher
	bcryptCost int
	// verboseLoginErrors preserves the legacy distinction between an
	// unknown username and a wrong password.
	verboseLoginErrors bool
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	RoleRepo   repository.RoleRepository
	RecordRepo repository.PatientRecordRepository
	Limiter    *auth.LoginLimiter
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:              deps.UserRepo,
		roles:              deps.RoleRepo,
		records:            deps.RecordRepo,
		tokens:             auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		limiter:            deps.Limiter,
		dispatcher:         deps.Dispatcher,
		bcryptCost:         cfg.Auth.BcryptCost,
		verboseLoginErrors: cfg.Auth.VerboseLoginErrors,
	}
}

// Register creates a patient account. New accounts always receive the fixed
// Patient role; only Access Administration can assign anything else.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.NewDuplicateUsername(in.Username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	patientRole, err := s.roles.GetByName(ctx, domain.RolePatient)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInternalError(errors.New("patient role not provisioned"))
		}
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:           in.Username,
		PasswordHash:       hash,
		RoleID:             patientRole.ID,
		RevokedPermissions: []domain.Permission{},
		DateOfBirth:        in.DateOfBirth,
		HomeAddress:        in.HomeAddress,
		PhoneNumber:        in.PhoneNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	record := &domain.PatientRecord{
		PatientID: user.ID,
		Notes: fmt.Sprintf("Date of Birth: %s, Home Address: %s, Phone Number: %s",
			in.DateOfBirth, in.HomeAddress, in.PhoneNumber),
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventUserRegistered,
		SubjectID: user.ID,
		Payload:   events.UserRegisteredPayload{Username: user.Username, RoleID: user.RoleID},
	})
	return user, nil
}

// Login authenticates a username/password pair and mints a session token
// bound to a fresh fingerprint. The token is self-contained; no server-side
// session is created.
func (s *AuthService) Login(ctx context.Context, username, password, remoteAddr string) (*domain.User, *auth.IssuedToken, error) {
	if err := s.limiter.Allow(ctx, username, remoteAddr); err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials(s.loginError("user not found"))
		}
		return nil, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials(s.loginError("incorrect password"))
	}

	issued, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}

	s.limiter.Reset(ctx, username)
	return user, issued, nil
}

// Refresh exchanges a still-valid token for a fresh one. The presented
// fingerprint must match the one embedded in the token; every failure
// collapses into a single unauthorized response.
func (s *AuthService) Refresh(ctx context.Context, tokenStr, presentedFingerprint string) (*auth.IssuedToken, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	if !auth.FingerprintsMatch(presentedFingerprint, claims.Fingerprint) {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	return s.tokens.Issue(user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) loginError(verbose string) string {
	if s.verboseLoginErrors {
		return verbose
	}
	return "invalid credentials"
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}
