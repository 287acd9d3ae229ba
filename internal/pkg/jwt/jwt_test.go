package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("acc-1", "a@example.com", RoleUser, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.AccountID)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, RoleUser, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("acc-1", "a@example.com", RoleAdmin, []byte("one"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("two"))
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateToken("acc-1", "", RoleUser, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.Error(t, err)
}
