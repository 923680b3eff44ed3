package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"studysync/internal/domain"
)

func TestOTPStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewOTPStoreWithClock(func() time.Time { return now })

	if _, err := store.Get(ctx, "alice@example.com"); !errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		t.Fatalf("missing code must report invalid, got %v", err)
	}

	if err := store.Put(ctx, "alice@example.com", "123456", 10*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	code, err := store.Get(ctx, "alice@example.com")
	if err != nil || code != "123456" {
		t.Fatalf("expected live code, got %q (err %v)", code, err)
	}

	// Upsert replaces the previous code.
	if err := store.Put(ctx, "alice@example.com", "654321", 10*time.Minute); err != nil {
		t.Fatalf("re-put: %v", err)
	}
	code, _ = store.Get(ctx, "alice@example.com")
	if code != "654321" {
		t.Fatalf("expected replacement code, got %q", code)
	}

	if err := store.Delete(ctx, "alice@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "alice@example.com"); !errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		t.Fatalf("deleted code must report invalid, got %v", err)
	}
}

func TestOTPStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewOTPStoreWithClock(func() time.Time { return now })

	if err := store.Put(ctx, "alice@example.com", "123456", 10*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(10*time.Minute - time.Second)
	if _, err := store.Get(ctx, "alice@example.com"); err != nil {
		t.Fatalf("code must survive until the deadline: %v", err)
	}

	now = now.Add(time.Second)
	if _, err := store.Get(ctx, "alice@example.com"); !errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		t.Fatalf("expected expiry at the deadline, got %v", err)
	}
}
