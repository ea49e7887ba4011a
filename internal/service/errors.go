// Package service coordinates mutations of recipes and their child rows
// with change auditing, post-commit events and job scheduling.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/store"
)

// Sentinel errors returned by the services. Callers check them with errors.Is.
var (
	// ErrNotFound indicates the requested recipe, step, preparation or schedule does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the request failed domain validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// wrapError maps expected conditions to sentinels and wraps everything else.
func wrapError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, domain.ErrScheduleInPast),
		errors.Is(err, domain.ErrAlreadyPublic),
		errors.Is(err, domain.ErrAlreadyScheduled):
		return err
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyDishName),
		errors.Is(err, domain.ErrInvalidRecipeStatus),
		errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &ServiceError{Operation: operation, Message: message, Err: err}
}
