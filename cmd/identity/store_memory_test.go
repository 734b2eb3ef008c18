package identity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedUser(t *testing.T, s *MemoryStore, phone string) User {
	t.Helper()
	u, err := s.Create(context.Background(), CreateUserInput{
		Name:         "Test User",
		Username:     "tester",
		Email:        "tester@example.com",
		Phone:        phone,
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaGhhc2hoYXNoaGFzaA",
		Now:          time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return u
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := seedUser(t, s, "0500000001")
	b, err := s.Create(ctx, CreateUserInput{
		Phone:        "0500000002",
		PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected sequential ids 1,2; got %d,%d", a.ID, b.ID)
	}
	if b.Balance != 0 || b.AccountType != AccountBasic || b.TwoFactorEnabled {
		t.Fatalf("expected defaults for new user, got %+v", b)
	}
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	s := NewMemoryStore()
	seedUser(t, s, "0501234567")

	_, err := s.Create(context.Background(), CreateUserInput{
		Phone:        "0501234567",
		PasswordHash: "h",
	})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFindByIdentifierMatchesUsernamePhoneEmail(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s, "0501234567")
	ctx := context.Background()

	for _, identifier := range []string{"tester", "TESTER", "0501234567", "tester@example.com"} {
		got, err := s.FindByIdentifier(ctx, identifier)
		if err != nil {
			t.Fatalf("FindByIdentifier(%q): %v", identifier, err)
		}
		if got.ID != u.ID {
			t.Fatalf("FindByIdentifier(%q): got user %d, want %d", identifier, got.ID, u.ID)
		}
	}

	if _, err := s.FindByIdentifier(ctx, "nobody"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMutationsActInPlace(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s, "0501234567")
	ctx := context.Background()

	if err := s.SetPassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	city := "Riyadh"
	updated, err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{City: &city})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.City != "Riyadh" || updated.Name != "Test User" {
		t.Fatalf("unexpected profile after update: %+v", updated)
	}

	toggled, err := s.ToggleTwoFactor(ctx, u.ID)
	if err != nil {
		t.Fatalf("ToggleTwoFactor: %v", err)
	}
	if !toggled.TwoFactorEnabled {
		t.Fatalf("expected two-factor on after toggle")
	}

	balance, err := s.AdjustBalance(ctx, u.ID, 500)
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	if balance != 500 {
		t.Fatalf("expected balance 500, got %d", balance)
	}

	got, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.PasswordHash != "new-hash" || got.Balance != 500 {
		t.Fatalf("mutations not visible: %+v", got)
	}
}

func TestAdjustBalanceNeverOverdraws(t *testing.T) {
	s := NewMemoryStore()
	u := seedUser(t, s, "0501234567")
	ctx := context.Background()

	if _, err := s.AdjustBalance(ctx, u.ID, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}

	// Debiting past zero must fail and leave the balance untouched.
	if _, err := s.AdjustBalance(ctx, u.ID, -101); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	got, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Balance != 100 {
		t.Fatalf("balance changed by failed debit: %d", got.Balance)
	}

	// Draining to exactly zero is allowed.
	balance, err := s.AdjustBalance(ctx, u.ID, -100)
	if err != nil {
		t.Fatalf("drain to zero: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected balance 0, got %d", balance)
	}
}
