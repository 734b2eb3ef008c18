package otp

import (
	"context"
	"strconv"
	"testing"
	"time"
)

type nopSender struct{}

func (nopSender) SendCode(context.Context, string, string, Purpose) {}

func newTestEngine() *Engine {
	return NewEngine(NewMemoryStore(), nopSender{}, nil, 0)
}

func TestIssueGeneratesFourDigitCode(t *testing.T) {
	e := newTestEngine()
	now := time.Now().UTC()

	for i := 0; i < 50; i++ {
		ch, err := e.Issue(context.Background(), now, "0501234567", PurposeLogin, Payload{UserID: 1})
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		n, err := strconv.Atoi(ch.Code)
		if err != nil || n < 1000 || n > 9999 {
			t.Fatalf("code %q not a 4-digit number", ch.Code)
		}
		if !ch.ExpiresAt.Equal(now.Add(DefaultTTL)) {
			t.Fatalf("unexpected expiry %v", ch.ExpiresAt)
		}
	}
}

func TestIssueReplacesPriorChallenge(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// Old code must be dead once a new challenge replaces it, unless the
	// regenerated code happens to collide.
	if first.Code != second.Code {
		if _, err := e.Verify(ctx, now, "admin", PurposeLogin, first.Code); err != ErrInvalidCode {
			t.Fatalf("expected ErrInvalidCode for replaced code, got %v", err)
		}
	}
	if _, err := e.Verify(ctx, now, "admin", PurposeLogin, second.Code); err != nil {
		t.Fatalf("Verify with fresh code: %v", err)
	}
}

func TestVerifySuccessDeletesChallenge(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	ch, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 7, DeviceID: "d1", RememberMe: true})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	payload, err := e.Verify(ctx, now, "admin", PurposeLogin, ch.Code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if payload.UserID != 7 || payload.DeviceID != "d1" || !payload.RememberMe {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if _, err := e.Verify(ctx, now, "admin", PurposeLogin, ch.Code); err != ErrNoChallenge {
		t.Fatalf("expected ErrNoChallenge after consumption, got %v", err)
	}
}

func TestVerifyWrongCodePreservesChallenge(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	ch, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	wrong := "0000"
	if wrong == ch.Code {
		wrong = "0001"
	}

	// Two wrong attempts in a row both fail and leave the challenge intact.
	for i := 0; i < 2; i++ {
		if _, err := e.Verify(ctx, now, "admin", PurposeLogin, wrong); err != ErrInvalidCode {
			t.Fatalf("attempt %d: expected ErrInvalidCode, got %v", i, err)
		}
	}

	if _, err := e.Verify(ctx, now, "admin", PurposeLogin, ch.Code); err != nil {
		t.Fatalf("Verify after retries: %v", err)
	}
}

func TestVerifyPurposeMismatch(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	ch, err := e.Issue(ctx, now, "0501234567", PurposeRegister, Payload{Name: "New User"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := e.Verify(ctx, now, "0501234567", PurposeLogin, ch.Code); err != ErrNoChallenge {
		t.Fatalf("expected ErrNoChallenge on purpose mismatch, got %v", err)
	}
}

func TestVerifyExpiredDeletesChallenge(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	ch, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 1})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	late := now.Add(DefaultTTL + time.Second)
	if _, err := e.Verify(ctx, late, "admin", PurposeLogin, ch.Code); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	// Expiry destroyed the challenge; even a correct code now reports no
	// challenge rather than expired again.
	if _, err := e.Verify(ctx, late, "admin", PurposeLogin, ch.Code); err != ErrNoChallenge {
		t.Fatalf("expected ErrNoChallenge after expiry deletion, got %v", err)
	}
}

func TestResend(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := e.Resend(ctx, now, "admin"); err != ErrNoChallenge {
		t.Fatalf("expected ErrNoChallenge without pending challenge, got %v", err)
	}

	if _, err := e.Issue(ctx, now, "admin", PurposeLogin, Payload{UserID: 3, DeviceID: "d9"}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := now.Add(4 * time.Minute)
	resent, err := e.Resend(ctx, later, "admin")
	if err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if !resent.ExpiresAt.Equal(later.Add(DefaultTTL)) {
		t.Fatalf("expected expiry window reset, got %v", resent.ExpiresAt)
	}
	if resent.Purpose != PurposeLogin || resent.Payload.UserID != 3 || resent.Payload.DeviceID != "d9" {
		t.Fatalf("purpose/payload not preserved: %+v", resent)
	}

	payload, err := e.Verify(ctx, later, "admin", PurposeLogin, resent.Code)
	if err != nil {
		t.Fatalf("Verify resent code: %v", err)
	}
	if payload.UserID != 3 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
