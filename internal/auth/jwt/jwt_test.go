package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)
	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)
	_, err = NewService(Config{SecretKey: testSecret})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	before := time.Now()
	tok, expiresAt, err := s.GenerateToken("alice", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "alice", claims.Subject)
}

func TestJWTService_ExpiredAndInvalid(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Minute})
	require.NoError(t, err)
	tok, _, err := s.GenerateToken("bob", "admin")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	other, err := NewService(Config{SecretKey: testSecret + "-other", Duration: time.Hour})
	require.NoError(t, err)
	tok, _, err := other.GenerateToken("mallory", "admin")
	require.NoError(t, err)
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// signed with the right key but without an issuer
	bare := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &Claims{Username: "eve", Role: "admin"})
	signed, err := bare.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
