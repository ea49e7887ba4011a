package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyDishName is returned when a recipe has no dish name.
	ErrEmptyDishName = errors.New("dish name cannot be empty")

	// ErrInvalidRecipeStatus is returned when a recipe status is not valid.
	ErrInvalidRecipeStatus = errors.New("invalid recipe status")

	// ErrScheduleInPast is returned when a publication is scheduled at or before now.
	ErrScheduleInPast = errors.New("schedule time must be in the future")

	// ErrAlreadyPublic is returned when scheduling a dish that is already public.
	ErrAlreadyPublic = errors.New("dish is already public")

	// ErrAlreadyScheduled is returned when a dish already has an active schedule.
	ErrAlreadyScheduled = errors.New("dish is already scheduled")
)
