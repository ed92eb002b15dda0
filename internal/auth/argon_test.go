package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashPassword_GeneratesSalt(t *testing.T) {
	salt, digest, err := HashPassword("correct horse", nil)
	require.NoError(t, err)

	assert.Len(t, salt, SaltLength)
	assert.Len(t, digest, argon2KeyLength)
}

func TestHashPassword_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")

	_, d1, err := HashPassword("secret", salt)
	require.NoError(t, err)
	_, d2, err := HashPassword("secret", salt)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestHashPassword_SaltIsArgonSaltParameter(t *testing.T) {
	salt := []byte("0123456789abcdef")

	_, digest, err := HashPassword("secret", salt)
	require.NoError(t, err)

	want := argon2.IDKey([]byte("secret"), salt, argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLength)
	assert.Equal(t, want, digest)

	concatenated := argon2.IDKey(append(append([]byte{}, salt...), "secret"...), nil,
		argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLength)
	assert.NotEqual(t, concatenated, digest)
}

func TestHashPassword_FreshSaltsDiffer(t *testing.T) {
	s1, d1, err := HashPassword("secret", nil)
	require.NoError(t, err)
	s2, d2, err := HashPassword("secret", nil)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, d1, d2)
}

func TestHashPassword_RejectsBadInput(t *testing.T) {
	_, _, err := HashPassword("", nil)
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, _, err = HashPassword(strings.Repeat("a", maxPasswordLength+1), nil)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, _, err = HashPassword(strings.Repeat("a", maxPasswordLength), nil)
	assert.NoError(t, err)
}

func TestVerifyPassword(t *testing.T) {
	salt, digest, err := HashPassword("contraseña", nil)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(salt, digest, "contraseña"))
	assert.False(t, VerifyPassword(salt, digest, "Contraseña"))
	assert.False(t, VerifyPassword(salt, digest, ""))
	assert.False(t, VerifyPassword(nil, digest, "contraseña"))
	assert.False(t, VerifyPassword(salt, nil, "contraseña"))
	assert.False(t, VerifyPassword(salt, digest[:16], "contraseña"))
}
