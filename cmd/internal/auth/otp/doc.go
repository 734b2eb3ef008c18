// Package otp implements Corbit's one-time-passcode challenge engine.
//
// A challenge is keyed by the login identifier (username, phone, or email),
// carries a purpose tag (login, register, reset) and a purpose-specific
// payload, and lives for a fixed TTL. At most one challenge is live per
// identifier; issuing replaces any prior unconsumed challenge.
//
// Verification-and-deletion is a single atomic store operation so that two
// concurrent verify calls for the same identifier cannot both succeed. A
// wrong code leaves the challenge intact for retry; expiry destroys it.
//
// Code delivery is an external collaborator (an SMS gateway); the engine only
// hands the code to a Sender, which in development logs it to the console.
package otp
