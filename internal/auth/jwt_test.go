package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	secret := []byte("test-secret-0123456789abcdef")
	tok, err := SignHS256(secret, "alice", "VIVENDI", time.Hour)
	require.NoError(t, err)

	claims, err := ParseHS256(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "VIVENDI", claims.Domain)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := SignHS256([]byte("secret-one-0123456789abcdef!"), "alice", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseHS256([]byte("secret-two-0123456789abcdef!"), tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	secret := []byte("test-secret-0123456789abcdef")
	tok, err := SignHS256(secret, "alice", "", -2*time.Minute)
	require.NoError(t, err)
	_, err = ParseHS256(secret, tok)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	secret := []byte("test-secret-0123456789abcdef")
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseHS256(secret, tok)
		assert.Error(t, err, "token %q", tok)
	}
}

func TestNewRandomSecretB64(t *testing.T) {
	a, err := NewRandomSecretB64(32)
	require.NoError(t, err)
	b, err := NewRandomSecretB64(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}
