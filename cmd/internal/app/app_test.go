package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestApp(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := LoadConfig()
	cfg.SeedDemoData = true
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(cfg, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	t.Cleanup(a.close)
	return srv
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestApp(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp, err = srv.Client().Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d", resp.StatusCode)
	}

	resp, err = srv.Client().Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body["status"] != true || body["message"] != "Server is running" {
		t.Fatalf("health body: %v", body)
	}
	if body["timestamp"] == nil {
		t.Fatalf("health body missing timestamp: %v", body)
	}
}

func TestUnknownEndpointEnvelope(t *testing.T) {
	srv := newTestApp(t)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/nope")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != false || body["message"] != "Endpoint not found: GET /api/v1/nope" {
		t.Fatalf("body: %v", body)
	}
}

func TestSeededLoginEndToEnd(t *testing.T) {
	srv := newTestApp(t)

	payload, _ := json.Marshal(map[string]any{
		"identifier": "user1",
		"password":   "123456",
		"device_id":  "dev-local",
	})
	resp, err := srv.Client().Post(srv.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["requires_otp"] != false {
		t.Fatalf("seeded user1 should log in directly: %v", body)
	}
	data, _ := body["data"].(map[string]any)
	if data["token"] == "" || data["token"] == nil {
		t.Fatalf("no token in %v", body)
	}
	if got := resp.Header.Get("X-Request-ID"); got == "" {
		t.Fatal("missing request id header")
	}
}
