package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// TokenManager handles issuing and validating session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the manager's time source. Tests use this to pin
// issuance and verification instants.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims is the session token payload. RevokedPermissions is a snapshot taken
// at issuance; the per-request gate re-resolves the live deny-list and treats
// the snapshot as informational only.
type Claims struct {
	SubjectID          string   `json:"sub_id"`
	Username           string   `json:"username"`
	RoleID             string   `json:"role"`
	RevokedPermissions []string `json:"revoked_permissions"`
	Fingerprint        string   `json:"fingerprint"`
	jwt.RegisteredClaims
}

// IssuedToken bundles a signed token with its out-of-band fingerprint.
type IssuedToken struct {
	Token       string
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Issue builds and signs a session token for the user. The fingerprint is
// derived from the issuance instant and must be mirrored to the client on a
// separate channel.
func (tm *TokenManager) Issue(user *domain.User) (*IssuedToken, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	fingerprint := Fingerprint(user.Username, user.ID, issuedAt)

	claims := &Claims{
		SubjectID:          user.ID,
		Username:           user.Username,
		RoleID:             user.RoleID,
		RevokedPermissions: domain.PermissionStrings(user.RevokedPermissions),
		Fingerprint:        fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Token:       signed,
		Fingerprint: fingerprint,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// Verify validates signature and expiry and returns the claims. A bad
// signature and an expired token are indistinguishable to callers.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
