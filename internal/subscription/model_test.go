package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chainsub/internal/chain/entity"
)

const period = uint64(2_592_000) // 30 days

func TestNextExpiryExtendsActiveFromExpiry(t *testing.T) {
	// Renewing while active keeps the unused time.
	existing := uint64(2_000_000)
	now := uint64(1_000_000)
	assert.Equal(t, existing+period, NextExpiry(existing, now, period))
}

func TestNextExpiryExtendsExpiredFromNow(t *testing.T) {
	// Renewing after expiry does not stack from the past.
	existing := uint64(1_000_000)
	now := uint64(2_000_000)
	assert.Equal(t, now+period, NextExpiry(existing, now, period))
}

func TestNextExpiryAtBoundaryExtendsFromNow(t *testing.T) {
	// expiry == now means expired, so the new period starts at now.
	now := uint64(1_500_000)
	assert.Equal(t, now+period, NextExpiry(now, now, period))
}

func TestNextExpiryFirstSubscription(t *testing.T) {
	now := uint64(1_500_000)
	assert.Equal(t, now+period, NextExpiry(0, now, period))
}

func TestDeriveActive(t *testing.T) {
	wallet := entity.MustAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	st := Derive(wallet, period, 1_000_000)
	assert.True(t, st.IsActive)
	assert.Equal(t, uint64(1_592_000), st.Remaining)
	assert.Equal(t, period, st.Expiry)
	assert.Equal(t, wallet, st.Wallet)
}

func TestDeriveStrictBoundary(t *testing.T) {
	wallet := entity.MustAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	st := Derive(wallet, 1_000_000, 1_000_000)
	assert.False(t, st.IsActive)
	assert.Zero(t, st.Remaining)
}

func TestDeriveNeverSubscribed(t *testing.T) {
	wallet := entity.MustAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	st := Derive(wallet, 0, 1_000_000)
	assert.False(t, st.IsActive)
	assert.Zero(t, st.Expiry)
	assert.Zero(t, st.Remaining)
}

func TestDeriveRemainingNeverNegative(t *testing.T) {
	wallet := entity.MustAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	for _, tc := range []struct{ expiry, now uint64 }{
		{0, 0}, {1, 2}, {100, 100}, {100, 1_000_000},
	} {
		st := Derive(wallet, tc.expiry, tc.now)
		assert.False(t, st.IsActive)
		assert.Zero(t, st.Remaining, "expiry=%d now=%d", tc.expiry, tc.now)
	}
}
