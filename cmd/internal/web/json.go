// Package web carries the JSON envelope shared by every API handler.
//
// Success bodies are handler-specific structs that embed status=true;
// failures always serialize as {status:false, message, error_code?}.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// WriteJSON serializes v with the standard headers.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes the failure envelope. code may be empty.
func Fail(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorBody{Status: false, Message: message, ErrorCode: code})
}

// DecodeJSON reads one JSON value from the request body. Unknown fields are
// tolerated for client compatibility; a missing body decodes as an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	return json.NewDecoder(body).Decode(dst)
}
