package stats

import (
	"math/big"

	"chainsub/internal/chain/entity"
)

// Stats is one consistent snapshot of ledger-level aggregates. It is
// returned whole or not at all.
type Stats struct {
	ActiveCount      int            // wallets active at query time, strict expiry > now
	TotalRevenue     *big.Int       // wei, sum of all Subscribed event amounts
	Price            *big.Int       // wei per subscription period
	Duration         uint64         // subscription period in seconds
	TotalSubscribers uint64         // wallets that ever subscribed
	Balance          *big.Int       // contract's current wei balance
	Contract         entity.Address // contract address the numbers come from
}
