package identity

import "strings"

// NormalizeIdentifier canonicalizes a login identifier (username, phone, or
// email). For now we only trim + lower-case; phone digits pass through as-is.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
