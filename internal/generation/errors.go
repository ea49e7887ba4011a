package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when every attempt of a generation call failed.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidResponse is returned when the model response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrEmptyResponse is returned when the service answered with no usable content.
	ErrEmptyResponse = errors.New("empty response from generation service")

	// ErrContentBlocked is returned when the service blocks the prompt due to safety filters.
	// It is permanent: retrying the same prompt will not help.
	ErrContentBlocked = errors.New("content blocked by generation safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// permanent reports whether retrying err is pointless.
func permanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) || errors.Is(err, ErrInvalidConfig)
}
