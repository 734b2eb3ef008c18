package authapi

import (
	"net/http"
	"strings"
)

// bearerToken extracts the opaque token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// maskPhone hides the middle of a phone number for OTP hints:
// "0501234567" becomes "0501****67".
func maskPhone(phone string) string {
	if len(phone) <= 8 {
		return phone
	}
	return phone[:4] + "****" + phone[8:]
}
