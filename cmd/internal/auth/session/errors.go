package session

import "errors"

var (
	// ErrNotFound is returned when a token does not match any live session.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when the session exists but its lifetime has
	// passed. The session is deleted as a side effect.
	ErrExpired = errors.New("session expired")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
