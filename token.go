package collagery

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the only role this service knows about.
const AdminRole = "admin"

type adminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and verifies the signed, expiring bearer tokens that
// authorize admin operations. Verification is stateless: there is no session
// store and no revocation, expiry is the only termination.
//
// The clock is injectable so expiry behavior is testable deterministically.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a token service with the shared secret and the
// lifetime applied to issued tokens.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return NewTokenServiceWithClock(secret, ttl, time.Now)
}

// NewTokenServiceWithClock is NewTokenService with an explicit clock.
func NewTokenServiceWithClock(secret []byte, ttl time.Duration, now func() time.Time) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, now: now}
}

// Issue signs a fresh admin token expiring after the configured lifetime.
func (s *TokenService) Issue() (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		},
		Role: AdminRole,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Verify checks a token's signature, expiry and role claim. Every failure
// mode (malformed token, wrong algorithm, bad signature, expired, wrong
// role) collapses to ErrUnauthorized; callers never see parser internals.
func (s *TokenService) Verify(tokenString string) error {
	claims := &adminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}

	if claims.Role != AdminRole {
		return ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the credential from an Authorization header value,
// matching the "Bearer <token>" pattern case-insensitively.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
