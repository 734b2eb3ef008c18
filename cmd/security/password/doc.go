// Package password provides password hashing and verification for Corbit.
//
// It implements Argon2id hashing with a PHC-style encoded string format:
// configurable parameters (via environment variables), length policy checks,
// and strict hash decoding with anti-DoS bounds during Verify.
//
// Security notes:
// - Hash strings are treated as untrusted input during Verify.
// - Verification refuses hashes whose parameters exceed reasonable bounds.
package password
