package subscription

import "chainsub/internal/chain/entity"

// Status is the derived subscription state of one wallet at one moment.
// It is computed from the ledger's stored expiry and the query time,
// never stored anywhere.
type Status struct {
	Wallet    entity.Address
	IsActive  bool
	Expiry    uint64 // unix seconds; 0 means no validity on record
	Remaining uint64 // seconds until expiry, 0 once expired
}

// NextExpiry is the contract's renewal arithmetic: a subscribe call
// extends from whichever is later, the existing expiry (an active
// subscription loses no time) or now (an expired one does not stack from
// the past). The service never performs this write, but callers that
// cache status need the rule to reason about renewals.
func NextExpiry(existing, now, period uint64) uint64 {
	if existing > now {
		return existing + period
	}
	return now + period
}

// Derive computes the status fields for a raw ledger expiry at the given
// time. Activity is strict: a subscription whose expiry equals now is
// already expired, matching the contract's own comparison.
func Derive(wallet entity.Address, expiry, now uint64) Status {
	st := Status{Wallet: wallet, Expiry: expiry}
	if expiry > now {
		st.IsActive = true
		st.Remaining = expiry - now
	}
	return st
}
