package token

import (
	"encoding/base64"
	"testing"
)

func TestNewBearerTokenEntropyAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		tok, err := NewBearerToken(0)
		if err != nil {
			t.Fatalf("NewBearerToken: %v", err)
		}
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not URL-safe base64: %v", err)
		}
		if len(raw) != DefaultBytes {
			t.Fatalf("token entropy = %d bytes, want %d", len(raw), DefaultBytes)
		}
		if seen[tok] {
			t.Fatalf("duplicate token minted: %q", tok)
		}
		seen[tok] = true
	}
}

func TestHashBearerTokenHexModes(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	plain := HashBearerTokenHex("some-token")
	if len(plain) != 64 {
		t.Fatalf("digest length = %d, want 64 hex chars", len(plain))
	}
	if plain != HashSHA256Hex("some-token") {
		t.Fatal("without a key the digest must be plain SHA-256")
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	keyed := HashBearerTokenHex("some-token")
	if len(keyed) != 64 {
		t.Fatalf("keyed digest length = %d", len(keyed))
	}
	if keyed == plain {
		t.Fatal("HMAC digest must differ from plain SHA-256")
	}
}

func TestHMACKeyFromEnv(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyMissing {
		t.Fatalf("missing key: %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyTooShort {
		t.Fatalf("short key: %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	key, err := HMACKeyFromEnv(32)
	if err != nil {
		t.Fatalf("valid key: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("key length = %d", len(key))
	}
}
