package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"spacrm-backend/cache"
)

const otpKeyPrefix = "otp:"

type otpEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

// OTPService issues and checks one-time codes keyed by phone number. The
// backing store decides whether state is process-local or shared.
type OTPService struct {
	store cache.Store
	clock Clock
	// serializes read-modify-write of the attempt counter
	mu sync.Mutex
}

func NewOTPService(store cache.Store, clock Clock) *OTPService {
	if clock == nil {
		clock = SystemClock
	}
	return &OTPService{store: store, clock: clock}
}

// Generate returns a random numeric code of the given length.
func (s *OTPService) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("otp length must be positive")
	}
	buf := make([]byte, length)
	ten := big.NewInt(10)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

// Store replaces any previous code for phone and resets the attempt count.
func (s *OTPService) Store(ctx context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(ctx, phone, otpEntry{Code: code, ExpiresAt: s.clock.Now().Add(ttl)}, ttl)
}

// Verify reports whether code matches. A wrong code costs one attempt; an
// expired or exhausted entry is removed. A match leaves state untouched so
// the caller can clear it once the guarded action succeeded.
func (s *OTPService) Verify(ctx context.Context, phone, code string, maxAttempts int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok, err := s.get(ctx, phone)
	if err != nil || !ok {
		return false, err
	}

	now := s.clock.Now()
	if !now.Before(entry.ExpiresAt) {
		return false, s.store.Delete(ctx, otpKeyPrefix+phone)
	}
	if entry.Attempts >= maxAttempts {
		return false, s.store.Delete(ctx, otpKeyPrefix+phone)
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		entry.Attempts++
		return false, s.put(ctx, phone, entry, entry.ExpiresAt.Sub(now))
	}
	return true, nil
}

func (s *OTPService) Clear(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, otpKeyPrefix+phone)
}

// RemainingAttempts is 0 for missing or expired entries.
func (s *OTPService) RemainingAttempts(ctx context.Context, phone string, maxAttempts int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok, err := s.get(ctx, phone)
	if err != nil || !ok {
		return 0, err
	}
	if !s.clock.Now().Before(entry.ExpiresAt) {
		return 0, s.store.Delete(ctx, otpKeyPrefix+phone)
	}
	if remaining := maxAttempts - entry.Attempts; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

func (s *OTPService) get(ctx context.Context, phone string) (otpEntry, bool, error) {
	raw, ok, err := s.store.Get(ctx, otpKeyPrefix+phone)
	if err != nil || !ok {
		return otpEntry{}, false, err
	}
	var entry otpEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return otpEntry{}, false, fmt.Errorf("decode otp entry: %w", err)
	}
	return entry, true, nil
}

func (s *OTPService) put(ctx context.Context, phone string, entry otpEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, otpKeyPrefix+phone, raw, ttl)
}
