package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func makeJWT(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestTokenExpiry_JWTWithExp(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := tokenExpiry(makeJWT(t, exp))
	require.True(t, ok)
	require.WithinDuration(t, exp, got, time.Second)
}

func TestTokenExpiry_OpaqueToken(t *testing.T) {
	_, ok := tokenExpiry("tok-abc")
	require.False(t, ok)
}

func TestTokenExpiry_JWTWithoutExp(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte("test-key"))
	require.NoError(t, err)

	_, ok := tokenExpiry(token)
	require.False(t, ok)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	require.True(t, tokenExpired(makeJWT(t, now.Add(-time.Minute)), now))
	require.False(t, tokenExpired(makeJWT(t, now.Add(time.Minute)), now))
	// Opaque tokens are never locally expired; the backend decides.
	require.False(t, tokenExpired("tok-abc", now))
}
