package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// It controls the two token lifetimes and the entropy of the opaque bearer
// tokens. The struct is environment-driven so deployments can tune security
// parameters without code changes.
type Config struct {
	// AccessTTL is the lifetime of an ordinary session.
	AccessTTL time.Duration

	// RememberTTL is the lifetime of a session created with remember-me.
	RememberTTL time.Duration

	// TokenBytes is the number of random bytes behind each bearer token.
	TokenBytes int
}

// DefaultConfig returns the standard lifetimes: 24 hours for a plain
// session, 30 days with remember-me, 32 bytes of token entropy.
func DefaultConfig() Config {
	return Config{
		AccessTTL:   24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
		TokenBytes:  32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional (durations must be valid Go duration strings):
//   - CORBIT_SESSION_ACCESS_TTL
//   - CORBIT_SESSION_REMEMBER_TTL
//   - CORBIT_SESSION_TOKEN_BYTES
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("CORBIT_SESSION_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTTL = d
	}

	if v := os.Getenv("CORBIT_SESSION_REMEMBER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RememberTTL = d
	}

	if v := os.Getenv("CORBIT_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.TokenBytes = n
	}

	// Invariant: remember-me extends the lifetime, never shortens it.
	if cfg.RememberTTL < cfg.AccessTTL {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
