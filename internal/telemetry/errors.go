package telemetry

import "errors"

// Domain-specific errors for payload encoding.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrLengthMismatch is returned when names and values differ in length.
	ErrLengthMismatch = errors.New("telemetry: names and values length mismatch")

	// ErrEmptyName is returned when a reading has an empty name.
	ErrEmptyName = errors.New("telemetry: reading name cannot be empty")
)
