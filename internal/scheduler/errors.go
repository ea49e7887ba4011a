package scheduler

import "errors"

var (
	// ErrNotStarted is returned when submitting to a scheduler that is not running.
	ErrNotStarted = errors.New("scheduler is not running")

	// ErrUnknownKind is returned when no job body is registered for a kind.
	ErrUnknownKind = errors.New("unknown job kind")

	// ErrDuplicateKind is returned when registering a kind twice.
	ErrDuplicateKind = errors.New("job kind already registered")

	// ErrShutdownTimeout is returned by Stop when in-flight jobs outlive the shutdown timeout.
	ErrShutdownTimeout = errors.New("timed out waiting for running jobs")
)
