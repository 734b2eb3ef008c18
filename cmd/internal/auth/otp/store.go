package otp

import (
	"context"
	"time"
)

// Purpose tags what a challenge completes once verified.
type Purpose string

const (
	PurposeLogin    Purpose = "login"
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

// Payload carries the state needed to finish the deferred action.
// Only the fields relevant to the purpose are set.
type Payload struct {
	// Login and reset: the resolved user.
	UserID int `json:"user_id,omitempty"`

	// Login: the device and remember-me flag captured at login time.
	DeviceID   string `json:"device_id,omitempty"`
	RememberMe bool   `json:"remember_me,omitempty"`

	// Register: the pending account. The password is hashed before it
	// enters the challenge; the plain credential is never stored.
	Name         string `json:"name,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// Challenge is a live one-time-passcode record.
type Challenge struct {
	Identifier string    `json:"identifier"`
	Code       string    `json:"code"`
	Purpose    Purpose   `json:"purpose"`
	ExpiresAt  time.Time `json:"expires_at"`
	Payload    Payload   `json:"payload"`
}

// Store abstracts challenge persistence.
//
// Implementations must make Consume atomic: of two concurrent Consume calls
// for the same identifier with the correct code, at most one may succeed.
type Store interface {
	// Put stores ch, replacing any existing challenge for the identifier.
	Put(ctx context.Context, ch Challenge) error

	// Get returns the pending challenge, or ErrNoChallenge.
	Get(ctx context.Context, identifier string) (Challenge, error)

	// Replace swaps the code and expiry of the pending challenge, keeping
	// purpose and payload. Returns ErrNoChallenge if none is pending.
	Replace(ctx context.Context, identifier, code string, expiresAt time.Time) (Challenge, error)

	// Consume validates and deletes the challenge in one step.
	// Failure modes, in order: ErrNoChallenge (absent or purpose mismatch),
	// ErrExpired (challenge deleted as a side effect), ErrInvalidCode
	// (challenge preserved). On success the challenge is deleted and
	// returned.
	Consume(ctx context.Context, identifier string, purpose Purpose, code string, now time.Time) (Challenge, error)

	// Delete removes any pending challenge (idempotent).
	Delete(ctx context.Context, identifier string) error
}
