package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestCSRFSigner_IssueVerify(t *testing.T) {
	s := NewCSRFSigner("secret", time.Hour)
	a, err := s.Issue()
	require.NoError(t, err)
	b, err := s.Issue()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, s.Verify(a))
	require.NoError(t, s.Verify(b))
	require.Equal(t, time.Hour, s.TTL())
	require.Equal(t, 2*time.Hour, NewCSRFSigner("secret", 0).TTL())
}

func TestCSRFSigner_Rejects(t *testing.T) {
	s := NewCSRFSigner("secret", time.Hour)

	foreign, err := NewCSRFSigner("other", time.Hour).Issue()
	require.NoError(t, err)
	require.Error(t, s.Verify(foreign))

	require.Error(t, s.Verify(""))
	require.Error(t, s.Verify("not-a-token"))

	sign := func(claims CSRFClaims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return tok
	}
	past := time.Now().Add(-2 * time.Hour)

	expired := sign(CSRFClaims{Nonce: "n", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    csrfIssuer,
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}})
	require.ErrorIs(t, s.Verify(expired), jwt.ErrTokenExpired)

	wrongIssuer := sign(CSRFClaims{Nonce: "n", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.Error(t, s.Verify(wrongIssuer))

	noNonce := sign(CSRFClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    csrfIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.Error(t, s.Verify(noNonce))
}
