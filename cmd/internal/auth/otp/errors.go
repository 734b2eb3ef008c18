package otp

import "errors"

var (
	// ErrNoChallenge is returned when no challenge is pending for the
	// identifier, or the pending challenge has a different purpose.
	ErrNoChallenge = errors.New("no challenge pending")

	// ErrExpired is returned when the challenge outlived its TTL. The
	// challenge is deleted as a side effect; the caller must re-issue.
	ErrExpired = errors.New("challenge expired")

	// ErrInvalidCode is returned for a wrong code. The challenge stays
	// intact, permitting retries until expiry.
	ErrInvalidCode = errors.New("invalid code")
)
