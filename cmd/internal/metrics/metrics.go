// Package metrics exposes Corbit's Prometheus instrumentation.
//
// Counters are registered on the default registry and served by the app's
// /metrics endpoint. Subsystems increment them directly; there is no
// indirection layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Logins counts login attempts by outcome:
	// "ok", "otp_pending", "invalid_credentials", "invalid_request".
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corbit_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// OTPIssued counts issued one-time passcodes by purpose.
	OTPIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corbit_otp_issued_total",
		Help: "One-time passcodes issued by purpose.",
	}, []string{"purpose"})

	// OTPVerified counts OTP verification attempts by outcome:
	// "ok", "invalid_code", "expired", "no_challenge".
	OTPVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corbit_otp_verified_total",
		Help: "One-time passcode verification attempts by outcome.",
	}, []string{"outcome"})

	// SessionsIssued counts minted bearer-token sessions.
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corbit_sessions_issued_total",
		Help: "Bearer-token sessions issued.",
	})

	// SessionsRevoked counts revoked sessions by scope:
	// "single", "device", "user".
	SessionsRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corbit_sessions_revoked_total",
		Help: "Bearer-token sessions revoked by scope.",
	}, []string{"scope"})

	// DevicesRegistered counts device registry upserts.
	DevicesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corbit_devices_registered_total",
		Help: "Device registrations (including re-registrations).",
	})

	// PushSent counts simulated push notifications by target device.
	PushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corbit_push_sent_total",
		Help: "Push notifications handed to the gateway, per target device.",
	})
)
