package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studysync/internal/domain"
)

// OTPStore keeps live signup codes in Redis. The key TTL is the expiry
// policy: once the window elapses the key is gone and the code is invalid.
// SET on an existing key replaces both the code and its TTL, which gives the
// at-most-one-live-code-per-email upsert for free.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func (s *OTPStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, s.key(email)).Result()
	if err == redis.Nil {
		return "", domain.ErrOTPInvalidOrExpired
	}
	if err != nil {
		return "", fmt.Errorf("load otp: %w", err)
	}
	return code, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

func (s *OTPStore) key(email string) string {
	return "otp:signup:" + email
}
