package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxPasswordBytes bcrypt only looks at the first 72 bytes of its input
const bcryptMaxPasswordBytes = 72

// ErrPasswordMismatch password does not match the stored hash
var ErrPasswordMismatch = errors.New("password mismatch")

// bcryptInput passes short passwords through unchanged. Longer ones are replaced by their
// base64 SHA-256 digest so every byte counts and bcrypt never rejects them.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxPasswordBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// HashPassword hashes password with bcrypt. bcrypt embeds a random salt in every hash.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckPassword compares password with hash
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
