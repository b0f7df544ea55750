package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const csrfIssuer = "sbb-csrf"

// CSRFClaims is the payload of a CSRF token. The nonce makes every token unique.
type CSRFClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// CSRFSigner issues and verifies HMAC-signed CSRF tokens for the double-submit cookie check.
type CSRFSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewCSRFSigner creates a signer; ttl <= 0 defaults to two hours.
func NewCSRFSigner(secret string, ttl time.Duration) *CSRFSigner {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &CSRFSigner{secret: []byte(secret), ttl: ttl}
}

// TTL reports how long issued tokens stay valid.
func (s *CSRFSigner) TTL() time.Duration {
	return s.ttl
}

// Issue returns a fresh signed token.
func (s *CSRFSigner) Issue() (string, error) {
	now := time.Now()
	claims := CSRFClaims{
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    csrfIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, issuer and expiry of a token.
func (s *CSRFSigner) Verify(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &CSRFClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(csrfIssuer))
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(*CSRFClaims)
	if !ok || !parsed.Valid || claims.Nonce == "" {
		return errors.New("invalid csrf token claims")
	}
	return nil
}
