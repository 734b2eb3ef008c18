// Package session implements bearer-token sessions for the HTTP API.
//
// Tokens are opaque random strings handed to the client once at login;
// the server keeps only a hash (HMAC-SHA256 when CORBIT_TOKEN_HMAC_KEY is
// set, otherwise SHA-256). A session lives for 24 hours, or 30 days when
// the client asked to be remembered. Expiry is lazy: an expired session is
// deleted the first time its token is presented.
//
// Multiple sessions may exist per user and per device; logout can revoke a
// single session, every session on one device, or every session the user
// owns.
package session
