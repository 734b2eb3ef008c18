// Package authapi is the session facade: the HTTP surface for login,
// registration, password recovery, logout, profile management, and device
// registration under /api/v1.
//
// The login state machine is Anonymous -> OtpPending -> Authenticated when
// the account has two-factor enabled, and Anonymous -> Authenticated
// directly otherwise. Every protected endpoint resolves the caller through
// the bearer token and, when an X-Device-ID header is present, refreshes
// that device's liveness as a side effect.
package authapi
