package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("u1", "a@b.org", TokenAccess, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(tok, TokenAccess, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	_, err = ParseToken(tok, TokenRefresh, "secret")
	assert.Error(t, err)

	_, err = ParseToken(tok, TokenAccess, "other")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tok, err := GenerateToken("u1", "", TokenAccess, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, TokenAccess, "secret")
	assert.Error(t, err)
}

func TestGenerateTokenNeedsSecret(t *testing.T) {
	_, err := GenerateToken("u1", "", TokenAccess, "", time.Minute)
	assert.Error(t, err)
}

func TestGetIPAddress(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", GetIPAddress(r))

	r.Header.Set("X-Forwarded-For", "41.90.1.1, 10.0.0.1")
	assert.Equal(t, "41.90.1.1", GetIPAddress(r))
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(24)
	require.NoError(t, err)
	assert.Len(t, s, 24)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.org", NormalizeEmail(" Alice@X.org "))
	assert.Equal(t, NormalizeEmail("alice@x.org"), NormalizeEmail("ALICE@x.ORG"))
}
