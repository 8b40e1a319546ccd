// Package token issues and verifies the signed bearer credentials exchanged
// between the services. Tokens are HS256-signed JWTs carrying the numeric
// user id and the username; validity is a pure function of the token bytes,
// the signing secret and the clock.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256 requires a key of at least 256 bits.
const minSecretBytes = 32

// Verification failure categories. Every failure is terminal for the request.
var (
	ErrMalformed     = errors.New("token is malformed")
	ErrBadSignature  = errors.New("token signature is invalid")
	ErrExpired       = errors.New("token is expired")
	ErrUnsupported   = errors.New("token algorithm is unsupported")
	ErrMissingClaims = errors.New("token is missing required claims")
)

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Identity is the verified result of a credential check.
type Identity struct {
	UserID  int64
	Subject string
}

// Manager signs and verifies credentials with a single symmetric key.
// The key and lifetime are fixed at construction; a Manager is safe for
// concurrent use.
type Manager struct {
	secret   []byte
	lifetime time.Duration
}

// NewManager validates the signing secret and returns a Manager.
// A secret shorter than 32 bytes is rejected so that a weak key aborts
// startup instead of failing on first use.
func NewManager(secret string, lifetime time.Duration) (*Manager, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", minSecretBytes, len(secret))
	}
	return &Manager{secret: []byte(secret), lifetime: lifetime}, nil
}

// Issue creates a signed credential for the given user.
func (m *Manager) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and claim shape of a presented
// credential and returns the identity it proves. Failures are classified as
// ErrMalformed, ErrBadSignature, ErrExpired, ErrUnsupported or
// ErrMissingClaims.
func (m *Manager) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnsupported
		}
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupported):
		return nil, ErrUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrMalformed
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return nil, ErrMissingClaims
	default:
		// Claim decode failures, such as a userId of the wrong JSON type,
		// surface from the parser as malformed tokens.
		return nil, ErrMalformed
	}
	if !parsed.Valid {
		return nil, ErrBadSignature
	}
	if claims.UserID <= 0 || claims.Subject == "" {
		return nil, ErrMissingClaims
	}
	return &Identity{UserID: claims.UserID, Subject: claims.Subject}, nil
}
