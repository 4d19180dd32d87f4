package service

import (
	"context"
	"time"

	"chainsub/internal/chain/entity"
	"chainsub/internal/subscription"
)

// LedgerReader is the read-only capability the service needs from the
// chain. It deliberately has no write methods.
type LedgerReader interface {
	Expiry(ctx context.Context, wallet entity.Address) (uint64, error)
}

// Service derives subscription status from ledger reads. It holds no
// state of its own beyond an optional TTL cache.
type Service struct {
	ledger LedgerReader
	cache  *StatusCache
	now    func() uint64
}

// NewService builds the state reader. cache may be nil to disable
// caching entirely.
func NewService(ledger LedgerReader, cache *StatusCache) *Service {
	return &Service{
		ledger: ledger,
		cache:  cache,
		now:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// GetStatus validates the wallet string, reads its expiry from the ledger
// and derives the status at the current time. A malformed wallet fails
// with entity.ErrInvalidAddress before any ledger access.
func (s *Service) GetStatus(ctx context.Context, wallet string) (subscription.Status, error) {
	addr, err := entity.ParseAddress(wallet)
	if err != nil {
		return subscription.Status{}, err
	}
	return s.StatusAt(ctx, addr, s.now())
}

// StatusAt derives the status of an already-validated wallet at an
// explicit query time. Two calls with the same arguments and unchanged
// ledger state return identical results.
func (s *Service) StatusAt(ctx context.Context, wallet entity.Address, now uint64) (subscription.Status, error) {
	if st, ok := s.cache.Get(wallet); ok {
		// Re-derive from the cached expiry so remaining/isActive always
		// reflect the caller's now, not the moment the cache was filled.
		return subscription.Derive(wallet, st.Expiry, now), nil
	}

	expiry, err := s.ledger.Expiry(ctx, wallet)
	if err != nil {
		return subscription.Status{}, err
	}

	st := subscription.Derive(wallet, expiry, now)
	s.cache.Put(wallet, st)
	return st, nil
}
