package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectJWT(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := sign(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(time.Hour).Unix()})

	info := Inspect(token, now)
	require.NotNil(t, info)
	require.Equal(t, "alice", info.Subject)
	require.NotNil(t, info.ExpiresAt)
	require.Equal(t, now.Add(time.Hour), *info.ExpiresAt)
	require.False(t, info.Expired)

	info = Inspect(token, now.Add(2*time.Hour))
	require.True(t, info.Expired)
}

func TestInspectIdentityClaim(t *testing.T) {
	token := sign(t, jwt.MapClaims{"identity": "bob"})
	info := Inspect(token, time.Now())
	require.NotNil(t, info)
	require.Equal(t, "bob", info.Subject)
	require.Nil(t, info.ExpiresAt)
}

func TestInspectOpaqueToken(t *testing.T) {
	require.Nil(t, Inspect("", time.Now()))
	require.Nil(t, Inspect("opaque-session-token", time.Now()))
}
