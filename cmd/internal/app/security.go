package app

import (
	"errors"

	"corbit/cmd/security/token"
)

// ValidateSecurityConfig enforces the token-hashing policy at startup.
// Fail-fast: a production deployment that asked for HMAC digests must not
// silently fall back to plain SHA-256.
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// 32 bytes is the usual floor for an HMAC-SHA256 secret. Measured in
	// bytes, not runes, because the key is used as raw bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: CORBIT_REQUIRE_TOKEN_HMAC=true but CORBIT_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: CORBIT_REQUIRE_TOKEN_HMAC=true but CORBIT_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}
	return nil
}
