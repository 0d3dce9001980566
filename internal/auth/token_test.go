package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := tm.Generate("user-1", "manager", "tenant-1")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "manager", claims.Role)
	require.Equal(t, "tenant-1", claims.TenantID)
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).Generate("user-1", "admin", "")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := tm.Generate("user-1", "employee", "tenant-1")
	require.NoError(t, err)

	_, err = tm.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NoError(t, ComparePassword(hashed, "s3cret-pass"))
	require.Error(t, ComparePassword(hashed, "wrong"))
}
