package service

import (
	"math/big"
	"sync"

	"chainsub/internal/chain/entity"
	"chainsub/internal/metrics"
)

// tracker folds the event history into per-wallet expiries and cumulative
// revenue. The chain emits no event when time runs out, so active counts
// must be filtered by expiry at query time, never taken from event counts.
type tracker struct {
	mu        sync.RWMutex
	expiries  map[entity.Address]uint64
	revenue   *big.Int
	lastBlock uint64 // highest block folded in, inclusive
	synced    bool
}

func newTracker() *tracker {
	return &tracker{
		expiries: make(map[entity.Address]uint64),
		revenue:  new(big.Int),
	}
}

// fold applies a scanned block range. Events must be ordered oldest
// first, as eth_getLogs returns them.
func (t *tracker) fold(events []entity.Event, upToBlock uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ev := range events {
		switch ev.Kind {
		case entity.EventSubscribed:
			t.expiries[ev.Wallet] = ev.Expiry
			if ev.Amount != nil {
				t.revenue.Add(t.revenue, ev.Amount)
			}
		case entity.EventCancelled:
			// Cancel zeroes validity but the record (and its revenue)
			// stays.
			t.expiries[ev.Wallet] = 0
		}
	}

	t.lastBlock = upToBlock
	t.synced = true
	metrics.TrackedSubscribers.Set(float64(len(t.expiries)))
}

func (t *tracker) nextBlock() (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.synced {
		return 0, false
	}
	return t.lastBlock + 1, true
}

// snapshot returns the active count at now and a copy of the revenue.
func (t *tracker) snapshot(now uint64) (int, *big.Int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	active := 0
	for _, expiry := range t.expiries {
		if expiry > now {
			active++
		}
	}
	return active, new(big.Int).Set(t.revenue)
}
