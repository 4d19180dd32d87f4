package service

import (
	"context"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"

	"chainsub/internal/chain/entity"
)

const blockTimeCacheSize = 4096

// Contract is read-only access to the deployed SubscriptionPayment
// contract. It exposes only view calls and log queries; subscribe and
// cancel transactions are signed and sent by the user's wallet, never
// from here.
type Contract struct {
	rpc        *RPCClient
	address    entity.Address
	blockTimes *lru.Cache[uint64, uint64]
}

func NewContract(rpc *RPCClient, address entity.Address) (*Contract, error) {
	cache, err := lru.New[uint64, uint64](blockTimeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Contract{rpc: rpc, address: address, blockTimes: cache}, nil
}

func (c *Contract) Address() entity.Address { return c.address }

// Expiry returns the raw expiry timestamp stored for a wallet. Zero means
// the contract has no validity on record; it does not distinguish "never
// subscribed" from "cancelled".
func (c *Contract) Expiry(ctx context.Context, wallet entity.Address) (uint64, error) {
	result, err := c.rpc.CallContract(ctx, c.address.String(), encodeCall(sigGetExpiry, &wallet))
	if err != nil {
		return 0, err
	}
	return decodeUint64Word(result)
}

// Price returns the fixed subscription price in wei.
func (c *Contract) Price(ctx context.Context) (*big.Int, error) {
	return c.callWord(ctx, sigSubscriptionPrice)
}

// Duration returns the subscription period in seconds.
func (c *Contract) Duration(ctx context.Context) (uint64, error) {
	result, err := c.rpc.CallContract(ctx, c.address.String(), encodeCall(sigSubscriptionDuration, nil))
	if err != nil {
		return 0, err
	}
	return decodeUint64Word(result)
}

// TotalSubscribers returns the count of wallets that ever subscribed.
func (c *Contract) TotalSubscribers(ctx context.Context) (uint64, error) {
	result, err := c.rpc.CallContract(ctx, c.address.String(), encodeCall(sigTotalSubscribers, nil))
	if err != nil {
		return 0, err
	}
	return decodeUint64Word(result)
}

// TotalRevenue returns the cumulative wei collected by subscribe calls.
func (c *Contract) TotalRevenue(ctx context.Context) (*big.Int, error) {
	return c.callWord(ctx, sigTotalRevenue)
}

// Balance returns the contract's current wei balance.
func (c *Contract) Balance(ctx context.Context) (*big.Int, error) {
	return c.callWord(ctx, sigGetBalance)
}

// HeadBlock returns the current chain head number.
func (c *Contract) HeadBlock(ctx context.Context) (uint64, error) {
	return c.rpc.BlockNumber(ctx)
}

// Events returns the decoded Subscribed/Cancelled history for a block
// range, oldest first, with block timestamps resolved.
func (c *Contract) Events(ctx context.Context, fromBlock, toBlock uint64) ([]entity.Event, error) {
	logs, err := c.rpc.Logs(ctx, c.address.String(), fromBlock, toBlock,
		[]string{topicSubscribed, topicCancelled})
	if err != nil {
		return nil, err
	}

	events := make([]entity.Event, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed {
			continue
		}
		ev, err := decodeLog(lg)
		if err != nil {
			return nil, err
		}
		ts, err := c.blockTimestamp(ctx, ev.BlockNumber)
		if err != nil {
			return nil, err
		}
		ev.Timestamp = ts
		events = append(events, ev)
	}
	return events, nil
}

func (c *Contract) callWord(ctx context.Context, signature string) (*big.Int, error) {
	result, err := c.rpc.CallContract(ctx, c.address.String(), encodeCall(signature, nil))
	if err != nil {
		return nil, err
	}
	return decodeWord(result)
}

func (c *Contract) blockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	if ts, ok := c.blockTimes.Get(number); ok {
		return ts, nil
	}
	ts, err := c.rpc.BlockTimestamp(ctx, number)
	if err != nil {
		return 0, err
	}
	c.blockTimes.Add(number, ts)
	return ts, nil
}
