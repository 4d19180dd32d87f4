package service

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"chainsub/internal/chain/entity"
	"chainsub/internal/metrics"
	"chainsub/internal/subscription"
)

const cacheMaxEntries = 4096

type cacheEntry struct {
	status   subscription.Status
	storedAt time.Time
}

// StatusCache bounds how long a ledger read may be reused. Population
// races are benign, reads are idempotent and last-writer-wins is fine.
type StatusCache struct {
	ttl     time.Duration
	entries *lru.Cache[entity.Address, cacheEntry]
}

// NewStatusCache returns nil when ttl is zero, which disables caching:
// every method is nil-safe.
func NewStatusCache(ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		return nil
	}
	entries, err := lru.New[entity.Address, cacheEntry](cacheMaxEntries)
	if err != nil {
		return nil
	}
	return &StatusCache{ttl: ttl, entries: entries}
}

func (c *StatusCache) Get(wallet entity.Address) (subscription.Status, bool) {
	if c == nil {
		return subscription.Status{}, false
	}
	entry, ok := c.entries.Get(wallet)
	if !ok {
		metrics.StatusCacheRequests.WithLabelValues("miss").Inc()
		return subscription.Status{}, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		c.entries.Remove(wallet)
		metrics.StatusCacheRequests.WithLabelValues("expired").Inc()
		return subscription.Status{}, false
	}
	metrics.StatusCacheRequests.WithLabelValues("hit").Inc()
	return entry.status, true
}

func (c *StatusCache) Put(wallet entity.Address, st subscription.Status) {
	if c == nil {
		return
	}
	c.entries.Add(wallet, cacheEntry{status: st, storedAt: time.Now()})
}
