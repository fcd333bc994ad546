package sensor

import "errors"

// Domain errors for the sensor package.
var (
	// ErrUnknownSource is returned when a sensor names a source type that does not exist.
	ErrUnknownSource = errors.New("sensor: unknown source")

	// ErrInvalidTransform is returned when a transform expression does not compile to a number.
	ErrInvalidTransform = errors.New("sensor: invalid transform")

	// ErrReadFailed is returned when a source cannot produce a raw value.
	ErrReadFailed = errors.New("sensor: read failed")

	// ErrDuplicateName is returned when two sensors in a set share a name.
	ErrDuplicateName = errors.New("sensor: duplicate name")
)
