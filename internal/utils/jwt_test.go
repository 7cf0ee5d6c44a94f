package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestUserJWTRoundTrip(t *testing.T) {
	token, err := GenerateUserJWT("user-123", testSecret)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, TokenUser, claims.Type)
}

func TestAdminJWTCarriesNoUser(t *testing.T) {
	token, err := GenerateAdminJWT(testSecret)
	require.NoError(t, err)

	claims, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenAdmin, claims.Type)
	assert.Empty(t, claims.UserID)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateUserJWT("user-123", testSecret)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, err := ParseJWT("not.a.token", testSecret)
	assert.Error(t, err)
}
