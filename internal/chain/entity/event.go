package entity

import "math/big"

type EventKind string

const (
	EventSubscribed EventKind = "subscribed"
	EventCancelled  EventKind = "cancelled"
)

// Event is one ledger payment event decoded from the contract logs.
type Event struct {
	Wallet      Address
	Kind        EventKind
	Amount      *big.Int // wei paid, zero for cancellations
	Expiry      uint64   // new expiry set by the event, zero for cancellations
	Timestamp   uint64   // block timestamp
	BlockNumber uint64
}
