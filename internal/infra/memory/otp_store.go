package memory

import (
	"context"
	"sync"
	"time"

	"studysync/internal/domain"
)

// OTPStore keeps live codes in memory with explicit expiry checks.
type OTPStore struct {
	mu    sync.Mutex
	codes map[string]otpEntry
	clock func() time.Time
}

type otpEntry struct {
	code      string
	expiresAt time.Time
}

func NewOTPStore() *OTPStore {
	return NewOTPStoreWithClock(time.Now)
}

// NewOTPStoreWithClock allows deterministic expiry in tests.
func NewOTPStoreWithClock(clock func() time.Time) *OTPStore {
	return &OTPStore{codes: make(map[string]otpEntry), clock: clock}
}

// Put upserts; re-issuing invalidates the previous code.
func (s *OTPStore) Put(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = otpEntry{code: code, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *OTPStore) Get(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[email]
	if !ok {
		return "", domain.ErrOTPInvalidOrExpired
	}
	if !s.clock().Before(entry.expiresAt) {
		delete(s.codes, email)
		return "", domain.ErrOTPInvalidOrExpired
	}
	return entry.code, nil
}

func (s *OTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}
