package device

import (
	"context"
	"time"
)

// Device is one registered (user, device) pair.
type Device struct {
	ID         int
	UserID     int
	DeviceID   string
	PushToken  string
	Name       string
	Platform   string
	AppVersion string

	LastActiveAt time.Time
	CreatedAt    time.Time
}

// View is the client-facing projection of a Device. The push handle is
// deliberately absent.
type View struct {
	ID         int       `json:"id"`
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Platform   string    `json:"platform"`
	AppVersion string    `json:"app_version"`
	LastActive time.Time `json:"last_active"`
	IsCurrent  bool      `json:"is_current"`
}

// UpsertInput carries a registration request. PushToken, DeviceID and
// Platform are required.
type UpsertInput struct {
	UserID     int
	DeviceID   string
	PushToken  string
	Name       string
	Platform   string
	AppVersion string
	Now        time.Time
}

// Store is the device persistence boundary.
type Store interface {
	// Upsert creates or replaces the entry for (user, device id). The
	// original creation time survives a replace.
	Upsert(ctx context.Context, in UpsertInput) (Device, error)

	// Get returns the entry for (user, device id), or ErrNotRegistered.
	Get(ctx context.Context, userID int, deviceID string) (Device, error)

	// SetPushToken updates the push handle and last-active time.
	// Returns ErrNotRegistered when no entry matches.
	SetPushToken(ctx context.Context, now time.Time, userID int, deviceID, pushToken string) (Device, error)

	// Touch refreshes last-active. Unknown devices are ignored.
	Touch(ctx context.Context, now time.Time, userID int, deviceID string) error

	// Remove deletes and returns the entry, or ErrNotRegistered.
	Remove(ctx context.Context, userID int, deviceID string) (Device, error)

	// RemoveAllForUser deletes and returns every entry the user owns.
	RemoveAllForUser(ctx context.Context, userID int) ([]Device, error)

	// ListForUser returns the user's devices ordered by registration time.
	ListForUser(ctx context.Context, userID int) ([]Device, error)
}
