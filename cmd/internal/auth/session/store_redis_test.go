package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisStore(rdb)
}

func testSession(hash string, userID int, deviceID string) Session {
	now := time.Now().UTC()
	return Session{
		ID:        "01J" + hash,
		TokenHash: hash,
		UserID:    userID,
		DeviceID:  deviceID,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestRedisStorePutGetDelete(t *testing.T) {
	s := newMiniredisStore(t)
	ctx := context.Background()

	sess := testSession("h1", 1, "device-a")
	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.GetByTokenHash(ctx, "h1")
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if got.UserID != 1 || got.DeviceID != "device-a" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := s.Delete(ctx, "h1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByTokenHash(ctx, "h1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Idempotent.
	if err := s.Delete(ctx, "h1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestRedisStoreDeleteByDevice(t *testing.T) {
	s := newMiniredisStore(t)
	ctx := context.Background()

	for _, sess := range []Session{
		testSession("a1", 1, "device-a"),
		testSession("a2", 1, "device-a"),
		testSession("b1", 1, "device-b"),
		testSession("c1", 2, "device-a"),
	} {
		if err := s.Put(ctx, sess); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	removed, err := s.DeleteByDevice(ctx, 1, "device-a")
	if err != nil {
		t.Fatalf("DeleteByDevice: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if _, err := s.GetByTokenHash(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a1 gone, got %v", err)
	}
	if _, err := s.GetByTokenHash(ctx, "b1"); err != nil {
		t.Fatalf("b1 should survive: %v", err)
	}
	if _, err := s.GetByTokenHash(ctx, "c1"); err != nil {
		t.Fatalf("c1 should survive: %v", err)
	}

	// Nothing left on the device.
	removed, err = s.DeleteByDevice(ctx, 1, "device-a")
	if err != nil {
		t.Fatalf("DeleteByDevice: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}

func TestRedisStoreDeleteAllForUser(t *testing.T) {
	s := newMiniredisStore(t)
	ctx := context.Background()

	for _, sess := range []Session{
		testSession("a1", 1, "device-a"),
		testSession("b1", 1, "device-b"),
		testSession("c1", 2, "device-a"),
	} {
		if err := s.Put(ctx, sess); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	removed, err := s.DeleteAllForUser(ctx, 1)
	if err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	if _, err := s.GetByTokenHash(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a1 gone, got %v", err)
	}
	if _, err := s.GetByTokenHash(ctx, "c1"); err != nil {
		t.Fatalf("other user's session should survive: %v", err)
	}
}

func TestRedisStoreExpiredTokenCountsAsGone(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewRedisStore(rdb)

	if err := s.Put(ctx, testSession("a1", 1, "device-a")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Redis drops the token key on TTL; the index entry goes stale and
	// must not be counted.
	mr.FastForward(25 * time.Hour)

	removed, err := s.DeleteByDevice(ctx, 1, "device-a")
	if err != nil {
		t.Fatalf("DeleteByDevice: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}
