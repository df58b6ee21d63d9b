package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate unique constraint violated
	ErrDuplicate = errors.New("duplicate record")
)

// translateError maps driver level errors onto repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
