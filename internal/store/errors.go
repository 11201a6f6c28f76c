package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Common store errors.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("entity already exists")

	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	ErrRoomNotFound = fmt.Errorf("%w: room", ErrNotFound)
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrEmailExists is returned when registering an email already in use.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrRoomCodeExists is returned when a generated room code lost the race
	// against a concurrent insert of the same code.
	ErrRoomCodeExists = fmt.Errorf("%w: room code", ErrDuplicate)
)

// translate maps gorm errors onto the store sentinels.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && isUniqueViolation(err):
		return duplicate
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// drivers that don't implement gorm's error translator
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
