package services

import (
	"context"
	"testing"
	"time"

	"spacrm-backend/cache"
	"spacrm-backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOTP(t *testing.T) (*OTPService, *testutil.Clock, *cache.MemoryStore) {
	t.Helper()
	clock := testutil.NewClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	store := cache.NewMemoryStore(clock.Now)
	return NewOTPService(store, clock), clock, store
}

func TestOTPService_Generate(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	for i := 0; i < 20; i++ {
		code, err := svc.Generate(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
	_, err := svc.Generate(0)
	assert.Error(t, err)
}

func TestOTPService_VerifyMatch(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, "0912345678", "123456", 5*time.Minute))

	ok, err := svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	// a match does not consume the code
	ok, err = svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Clear(ctx, "0912345678"))
	ok, err = svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOTPService_Expiry(t *testing.T) {
	svc, clock, store := newTestOTP(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, "0912345678", "123456", 5*time.Minute))

	clock.Advance(4*time.Minute + 59*time.Second)
	remaining, err := svc.RemainingAttempts(ctx, "0912345678", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	clock.Advance(time.Second)
	ok, err := svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestOTPService_FourWrongThenRight(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, "0912345678", "123456", 5*time.Minute))

	for i := 0; i < 4; i++ {
		ok, err := svc.Verify(ctx, "0912345678", "000000", 5)
		require.NoError(t, err)
		require.False(t, ok)
	}
	remaining, err := svc.RemainingAttempts(ctx, "0912345678", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	ok, err := svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOTPService_FiveWrongExhausts(t *testing.T) {
	svc, _, store := newTestOTP(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, "0912345678", "123456", 5*time.Minute))

	for i := 0; i < 5; i++ {
		ok, err := svc.Verify(ctx, "0912345678", "999999", 5)
		require.NoError(t, err)
		require.False(t, ok)
	}

	ok, err := svc.Verify(ctx, "0912345678", "123456", 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestOTPService_StoreResetsAttempts(t *testing.T) {
	svc, _, _ := newTestOTP(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, "0912345678", "111111", time.Minute))
	for i := 0; i < 3; i++ {
		_, err := svc.Verify(ctx, "0912345678", "000000", 5)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Store(ctx, "0912345678", "222222", time.Minute))
	remaining, err := svc.RemainingAttempts(ctx, "0912345678", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	ok, err := svc.Verify(ctx, "0912345678", "111111", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}
