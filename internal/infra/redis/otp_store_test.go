package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"studysync/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisOTPStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewOTPStore(client)

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

	if err := store.Delete(ctx, "alice@example.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "alice@example.com"); !errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		t.Fatalf("deleted code must report invalid, got %v", err)
	}
}

func TestRedisOTPStoreUpsertResetsCodeAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewOTPStore(client)

	if err := store.Put(ctx, "alice@example.com", "111111", 10*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(9 * time.Minute)
	if err := store.Put(ctx, "alice@example.com", "222222", 10*time.Minute); err != nil {
		t.Fatalf("re-put: %v", err)
	}

	// Past the first code's deadline; the re-issue restarted the window.
	mr.FastForward(2 * time.Minute)
	code, err := store.Get(ctx, "alice@example.com")
	if err != nil || code != "222222" {
		t.Fatalf("expected refreshed code, got %q (err %v)", code, err)
	}
}

func TestRedisOTPStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewOTPStore(client)

	if err := store.Put(ctx, "alice@example.com", "123456", 10*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(11 * time.Minute)
	if _, err := store.Get(ctx, "alice@example.com"); !errors.Is(err, domain.ErrOTPInvalidOrExpired) {
		t.Fatalf("expected expired code to report invalid, got %v", err)
	}
}
