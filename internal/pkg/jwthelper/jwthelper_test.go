package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventreg/regclient/internal/credential"
	"github.com/eventreg/regclient/internal/domain"
)

var testKey = []byte("test-signing-key")

func TestGenerateAndParseToken(t *testing.T) {
	user := domain.User{ID: 12, Role: domain.RoleAdmin}

	token, err := GenerateToken(testKey, user, time.Minute, "go-test")
	require.NoError(t, err)

	claims, err := ParseToken(testKey, token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "12", claims.Subject)

	exp, err := credential.TokenExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)
}

func TestParseTokenRejects(t *testing.T) {
	user := domain.User{ID: 12, Role: domain.RoleUser}

	expired, err := GenerateToken(testKey, user, -time.Minute, "")
	require.NoError(t, err)
	otherKey, err := GenerateToken([]byte("other"), user, time.Minute, "")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"wrong key": otherKey,
		"garbage":   "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(testKey, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
