// Package auth implements the parent admin authentication: a bcrypt-checked
// PIN guarded by an in-memory lockout tracker, exchanged for a signed
// session cookie with a sliding expiry.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session policy.
//
// The admin surface uses a single signed cookie rather than a token pair:
// there is exactly one admin identity (the parent), sessions are short, and
// the browser is the only client. The cookie is an HS256 JWT with a 30
// minute expiry; the middleware re-issues it on every authenticated request,
// so an active reviewer stays signed in and an idle session lapses.
const (
	// SessionTTL is how long a session token is valid without activity.
	SessionTTL = 30 * time.Minute

	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "admin_session"

	// sessionRole is the role claim baked into every session token.
	sessionRole = "admin"
)

// Predefined session errors.
var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session has expired")
)

// SessionClaims are the claims in a session token.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Role is always "admin"; present so future roles don't need a new
	// token shape.
	Role string `json:"role"`
}

// SessionService issues and verifies session tokens.
type SessionService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// SessionConfig holds configuration for the session service.
type SessionConfig struct {
	// SigningKey is the secret used to sign session tokens. Must be at
	// least 32 bytes; enforced at config load.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string
}

// NewSessionService creates a new session service.
func NewSessionService(cfg SessionConfig) *SessionService {
	return &SessionService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// Issue creates a new session token.
func (s *SessionService) Issue() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(SessionTTL)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionRole,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
		Role: sessionRole,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify validates a session token.
func (s *SessionService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidSession
	}

	if !token.Valid || claims.Role != sessionRole {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
