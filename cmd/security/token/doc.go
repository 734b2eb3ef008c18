// Package token provides bearer-token hashing primitives for Corbit.
//
// It is the single source of truth for how session tokens are digested before
// storage: the plain token is only ever held by the client, the server keeps a
// 64-char hex digest.
//
// Design goals:
// - Default dev mode: SHA-256(token) when no HMAC key is configured.
// - Hardened mode: HMAC-SHA256(token, key) when CORBIT_TOKEN_HMAC_KEY is set.
package token
