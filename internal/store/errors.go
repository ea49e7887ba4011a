package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrRecipeNotFound            = fmt.Errorf("%w: recipe", ErrNotFound)
	ErrStepNotFound              = fmt.Errorf("%w: step", ErrNotFound)
	ErrTagNotFound               = fmt.Errorf("%w: tag", ErrNotFound)
	ErrEssentialNotFound         = fmt.Errorf("%w: essential", ErrNotFound)
	ErrCommentNotFound           = fmt.Errorf("%w: cooking comment", ErrNotFound)
	ErrStarchPreparationNotFound = fmt.Errorf("%w: starch preparation", ErrNotFound)
	ErrScheduleNotFound          = fmt.Errorf("%w: scheduled dish", ErrNotFound)
	ErrNotificationNotFound      = fmt.Errorf("%w: notification", ErrNotFound)
	ErrJobNotFound               = fmt.Errorf("%w: scheduled job", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific errors all wrap ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
