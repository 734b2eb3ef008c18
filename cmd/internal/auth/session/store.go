package session

import (
	"context"
	"time"
)

// Session is a live bearer-token session. Only the token hash is stored;
// the plain token exists client-side only.
type Session struct {
	ID         string    `json:"id"`
	TokenHash  string    `json:"token_hash"`
	UserID     int       `json:"user_id"`
	DeviceID   string    `json:"device_id"`
	RememberMe bool      `json:"remember_me"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Issued pairs a freshly created session with its plain token. The token is
// returned exactly once and never persisted.
type Issued struct {
	Session Session
	Token   string
}

// Store abstracts session persistence, keyed by token hash.
type Store interface {
	// Put stores a session, replacing any session with the same token hash.
	Put(ctx context.Context, s Session) error

	// GetByTokenHash returns the session for a token hash, or ErrNotFound.
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)

	// Delete removes the session with the given token hash (idempotent).
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByDevice removes every session the user holds on one device
	// and reports how many were removed.
	DeleteByDevice(ctx context.Context, userID int, deviceID string) (int, error)

	// DeleteAllForUser removes every session the user holds and reports
	// how many were removed.
	DeleteAllForUser(ctx context.Context, userID int) (int, error)
}
