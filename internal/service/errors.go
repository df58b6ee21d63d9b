package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation missing or malformed input
	ErrValidation = errors.New("validation failed")
	// ErrConflict the record already exists
	ErrConflict = errors.New("conflict")
	// ErrUsernameTaken registration with an existing username
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrConflict)
	// ErrNotFound the requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrAuthenticationRequired the operation needs a logged-in user
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInvalidCredentials unknown username or wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
