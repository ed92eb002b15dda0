package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Sensible defaults for a small self-hosted catalog.
	argon2Memory      = 64 * 1024
	argon2Iterations  = 3
	argon2Parallelism = 4
	argon2KeyLength   = 32

	// SaltLength is the size of generated salts in bytes.
	SaltLength = 16

	// Caps hashing cost for hostile inputs.
	maxPasswordLength = 1024
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned for passwords over maxPasswordLength bytes.
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// HashPassword derives the Argon2id digest of password under salt.
// A nil salt is replaced by SaltLength fresh random bytes. The salt actually
// used is returned alongside the digest so callers can persist both.
func HashPassword(password string, salt []byte) (usedSalt, digest []byte, err error) {
	if password == "" {
		return nil, nil, ErrEmptyPassword
	}
	if len(password) > maxPasswordLength {
		return nil, nil, ErrPasswordTooLong
	}

	if salt == nil {
		salt = make([]byte, SaltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	digest = argon2.IDKey([]byte(password), salt, argon2Iterations, argon2Memory, argon2Parallelism, argon2KeyLength)
	return salt, digest, nil
}

// VerifyPassword reports whether password hashes to digest under salt.
// The digest comparison runs in constant time.
func VerifyPassword(salt, digest []byte, password string) bool {
	if password == "" || len(password) > maxPasswordLength || len(salt) == 0 || len(digest) == 0 {
		return false
	}

	_, candidate, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}
