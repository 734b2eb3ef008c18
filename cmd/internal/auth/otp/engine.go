package otp

import (
	"context"
	"crypto/rand"
	"log/slog"
	"math/big"
	"time"

	"corbit/cmd/internal/metrics"
)

// DefaultTTL is the challenge lifetime for all purposes.
const DefaultTTL = 300 * time.Second

// Sender delivers a code out-of-band. Delivery is fire-and-forget: the engine
// never blocks on it and delivery failures do not fail the issuing request.
type Sender interface {
	SendCode(ctx context.Context, identifier, code string, purpose Purpose)
}

// LogSender writes codes to the operator console. This is the development
// stand-in for the SMS gateway.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) SendCode(_ context.Context, identifier, code string, purpose Purpose) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("otp.code", "identifier", identifier, "purpose", string(purpose), "code", code)
}

// Engine issues, resends, and verifies one-time passcodes.
type Engine struct {
	ttl    time.Duration
	store  Store
	sender Sender
	log    *slog.Logger
}

// NewEngine constructs an Engine. A zero ttl takes DefaultTTL; a nil sender
// falls back to LogSender.
func NewEngine(store Store, sender Sender, log *slog.Logger, ttl time.Duration) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if sender == nil {
		sender = LogSender{Log: log}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Engine{ttl: ttl, store: store, sender: sender, log: log}
}

// Issue generates a fresh 4-digit code and stores a challenge for the
// identifier, replacing any prior unconsumed one.
func (e *Engine) Issue(ctx context.Context, now time.Time, identifier string, purpose Purpose, payload Payload) (Challenge, error) {
	code, err := newCode()
	if err != nil {
		return Challenge{}, err
	}

	ch := Challenge{
		Identifier: identifier,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  now.Add(e.ttl),
		Payload:    payload,
	}
	if err := e.store.Put(ctx, ch); err != nil {
		return Challenge{}, err
	}

	metrics.OTPIssued.WithLabelValues(string(purpose)).Inc()
	e.sender.SendCode(ctx, identifier, code, purpose)
	return ch, nil
}

// Resend regenerates the code and resets the expiry window of the pending
// challenge, preserving purpose and payload. ErrNoChallenge if none pending.
func (e *Engine) Resend(ctx context.Context, now time.Time, identifier string) (Challenge, error) {
	code, err := newCode()
	if err != nil {
		return Challenge{}, err
	}

	ch, err := e.store.Replace(ctx, identifier, code, now.Add(e.ttl))
	if err != nil {
		return Challenge{}, err
	}

	e.sender.SendCode(ctx, identifier, code, ch.Purpose)
	return ch, nil
}

// Verify checks the code against the pending challenge and deletes it on
// success, returning the captured payload.
func (e *Engine) Verify(ctx context.Context, now time.Time, identifier string, purpose Purpose, code string) (Payload, error) {
	ch, err := e.store.Consume(ctx, identifier, purpose, code, now)
	switch {
	case err == nil:
		metrics.OTPVerified.WithLabelValues("ok").Inc()
		return ch.Payload, nil
	case err == ErrNoChallenge:
		metrics.OTPVerified.WithLabelValues("no_challenge").Inc()
	case err == ErrExpired:
		metrics.OTPVerified.WithLabelValues("expired").Inc()
	case err == ErrInvalidCode:
		metrics.OTPVerified.WithLabelValues("invalid_code").Inc()
	}
	return Payload{}, err
}

// TTLSeconds reports the configured challenge lifetime in whole seconds,
// as surfaced to clients in otp_expires_in.
func (e *Engine) TTLSeconds() int {
	return int(e.ttl / time.Second)
}

// newCode draws a uniform 4-digit numeric code from crypto/rand.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return (n.Add(n, big.NewInt(1000))).String(), nil
}
