package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	session := &Session{
		JTI:       "jti-1",
		UserID:    "user-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Record(ctx, session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	live, err := store.IsLive(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if !live {
		t.Error("Expected session to be live")
	}

	live, err = store.IsLive(ctx, "unknown")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if live {
		t.Error("Unknown JTI should not be live")
	}

	if err := store.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	live, _ = store.IsLive(ctx, "jti-1")
	if live {
		t.Error("Revoked session should not be live")
	}

	// Revoking again is a no-op
	if err := store.Revoke(ctx, "jti-1"); err != nil {
		t.Errorf("Second revoke should not fail: %v", err)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	expired := &Session{
		JTI:       "jti-old",
		UserID:    "user-1",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := store.Record(ctx, expired); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	live, err := store.IsLive(ctx, "jti-old")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if live {
		t.Error("Expired session should not be live")
	}
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisSessionStore(mr.Addr(), 0)
	if err != nil {
		t.Fatalf("Failed to create redis store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	session := &Session{
		JTI:       "jti-1",
		UserID:    "user-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Record(ctx, session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	live, err := store.IsLive(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if !live {
		t.Error("Expected session to be live")
	}

	// TTL driven expiry
	mr.FastForward(2 * time.Hour)
	live, err = store.IsLive(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if live {
		t.Error("Session should have expired with the key TTL")
	}
}

func TestRedisSessionStoreRevoke(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisSessionStore(mr.Addr(), 0)
	if err != nil {
		t.Fatalf("Failed to create redis store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	session := &Session{
		JTI:       "jti-1",
		UserID:    "user-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := store.Record(ctx, session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := store.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	live, err := store.IsLive(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsLive failed: %v", err)
	}
	if live {
		t.Error("Revoked session should not be live")
	}
}
