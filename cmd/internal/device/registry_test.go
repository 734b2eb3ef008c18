package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRegistry() *Registry {
	return NewRegistry(NewMemoryStore(), nil, nil)
}

func registerInput(userID int, deviceID string, now time.Time) UpsertInput {
	return UpsertInput{
		UserID:     userID,
		DeviceID:   deviceID,
		PushToken:  "fcm-" + deviceID,
		Name:       "Phone " + deviceID,
		Platform:   "ios",
		AppVersion: "1.0.0",
		Now:        now,
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	cases := []UpsertInput{
		{UserID: 1, DeviceID: "d1", Platform: "ios", Now: now},                      // no push token
		{UserID: 1, PushToken: "fcm-1", Platform: "ios", Now: now},                  // no device id
		{UserID: 1, DeviceID: "d1", PushToken: "fcm-1", Now: now},                   // no platform
	}
	for i, in := range cases {
		if _, err := r.Register(ctx, in); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("case %d: expected ErrMissingFields, got %v", i, err)
		}
	}
}

func TestRegisterUpsertPreservesCreation(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	first, err := r.Register(ctx, registerInput(1, "d1", now))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}

	later := now.Add(time.Hour)
	in := registerInput(1, "d1", later)
	in.PushToken = "fcm-rotated"
	in.Name = "Renamed"

	second, err := r.Register(ctx, in)
	if err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert allocated a new id: %d vs %d", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("creation time not preserved: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
	if second.PushToken != "fcm-rotated" || second.Name != "Renamed" {
		t.Fatalf("mutable fields not replaced: %+v", second)
	}
	if !second.LastActiveAt.Equal(later) {
		t.Fatalf("last active not refreshed: %v", second.LastActiveAt)
	}

	// Still a single entry.
	devs, err := r.ListForUser(ctx, 1, "")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("len(devs) = %d, want 1", len(devs))
	}
}

func TestUpdatePushToken(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := r.UpdatePushToken(ctx, now, 1, "d1", "fcm-new"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if _, err := r.UpdatePushToken(ctx, now, 1, "d1", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields for empty token, got %v", err)
	}

	if _, err := r.Register(ctx, registerInput(1, "d1", now)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	later := now.Add(time.Minute)
	dev, err := r.UpdatePushToken(ctx, later, 1, "d1", "fcm-new")
	if err != nil {
		t.Fatalf("UpdatePushToken: %v", err)
	}
	if dev.PushToken != "fcm-new" || !dev.LastActiveAt.Equal(later) {
		t.Fatalf("unexpected device %+v", dev)
	}
}

func TestUnregister(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := r.Unregister(ctx, 1, "d1"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}

	if _, err := r.Register(ctx, registerInput(1, "d1", now)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	removed, err := r.Unregister(ctx, 1, "d1")
	if err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if removed.DeviceID != "d1" {
		t.Fatalf("unexpected removed device %+v", removed)
	}
	if _, err := r.Get(ctx, 1, "d1"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected device gone, got %v", err)
	}
}

func TestRemoveAllForUser(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range []string{"d1", "d2"} {
		if _, err := r.Register(ctx, registerInput(1, d, now)); err != nil {
			t.Fatalf("Register %s: %v", d, err)
		}
	}
	if _, err := r.Register(ctx, registerInput(2, "d1", now)); err != nil {
		t.Fatalf("Register other user: %v", err)
	}

	removed, err := r.RemoveAllForUser(ctx, 1)
	if err != nil {
		t.Fatalf("RemoveAllForUser: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("len(removed) = %d, want 2", len(removed))
	}

	devs, err := r.ListForUser(ctx, 2, "")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(devs) != 1 {
		t.Fatalf("other user's device should survive, got %d", len(devs))
	}
}

func TestListForUserMarksCurrentAndHidesPushToken(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range []string{"d1", "d2"} {
		if _, err := r.Register(ctx, registerInput(1, d, now)); err != nil {
			t.Fatalf("Register %s: %v", d, err)
		}
	}

	views, err := r.ListForUser(ctx, 1, "d2")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	if views[0].DeviceID != "d1" || views[1].DeviceID != "d2" {
		t.Fatalf("unexpected order: %+v", views)
	}
	if views[0].IsCurrent || !views[1].IsCurrent {
		t.Fatalf("current flag wrong: %+v", views)
	}
}

type capturingGateway struct {
	tokens []string
}

func (g *capturingGateway) Send(_ context.Context, pushToken, _, _ string) {
	g.tokens = append(g.tokens, pushToken)
}

func TestNotifyUser(t *testing.T) {
	gw := &capturingGateway{}
	r := NewRegistry(NewMemoryStore(), gw, nil)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, d := range []string{"d1", "d2"} {
		if _, err := r.Register(ctx, registerInput(1, d, now)); err != nil {
			t.Fatalf("Register %s: %v", d, err)
		}
	}
	if _, err := r.Register(ctx, registerInput(2, "d9", now)); err != nil {
		t.Fatalf("Register other user: %v", err)
	}

	r.NotifyUser(ctx, 1, "Balance updated", "Your purchase went through.")

	if len(gw.tokens) != 2 {
		t.Fatalf("sent to %d devices, want 2", len(gw.tokens))
	}
	for _, tok := range gw.tokens {
		if tok != "fcm-d1" && tok != "fcm-d2" {
			t.Fatalf("unexpected push token %q", tok)
		}
	}
}
