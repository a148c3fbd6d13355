package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := &JWTManager{secret: "test-secret"}

	token, err := manager.GenerateAccessJWT("user-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := &JWTManager{secret: "test-secret"}

	token, err := manager.GenerateAccessJWT("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := (&JWTManager{secret: "one-secret"}).GenerateAccessJWT("user-1", time.Hour)
	require.NoError(t, err)

	_, err = (&JWTManager{secret: "another-secret"}).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_Garbage(t *testing.T) {
	manager := &JWTManager{secret: "test-secret"}

	_, err := manager.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
