// Package identity is the credential store for Corbit.
//
// It owns the user table: lookup by id or by identifier (username, phone, or
// email), creation with sequential ids and phone uniqueness, and in-place
// mutation of password, profile, and the two-factor flag.
//
// Passwords are stored as Argon2id PHC hashes (cmd/security/password); the
// plain credential never leaves the HTTP boundary.
package identity
