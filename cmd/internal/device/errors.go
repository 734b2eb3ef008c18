package device

import "errors"

var (
	// ErrMissingFields is returned when a registration lacks the push
	// handle, device id, or platform.
	ErrMissingFields = errors.New("missing required fields")

	// ErrNotRegistered is returned when no device matches (user, device id).
	ErrNotRegistered = errors.New("device not registered")
)
