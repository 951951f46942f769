package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khidmah/backend/internal/auth"
)

func TestJWT_RoundTrip(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sub, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := auth.NewJWTManager("secret-a", time.Hour).Generate("user-123")
	require.NoError(t, err)

	_, err = auth.NewJWTManager("secret-b", time.Hour).Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWT_RejectsExpired(t *testing.T) {
	m := auth.NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("user-123")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	m := auth.NewJWTManager("test-secret", time.Hour)

	_, err := m.Validate("")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = m.Validate("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
