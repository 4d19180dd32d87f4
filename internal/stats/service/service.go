package service

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chainsub/internal/chain/entity"
	"chainsub/internal/stats"
)

// ContractReader is the read-only slice of the contract the aggregator
// consumes.
type ContractReader interface {
	Address() entity.Address
	Price(ctx context.Context) (*big.Int, error)
	Duration(ctx context.Context) (uint64, error)
	TotalSubscribers(ctx context.Context) (uint64, error)
	Balance(ctx context.Context) (*big.Int, error)
	HeadBlock(ctx context.Context) (uint64, error)
	Events(ctx context.Context, fromBlock, toBlock uint64) ([]entity.Event, error)
}

// Service aggregates ledger events into stats. Refresh is incremental:
// the first call backfills from startBlock, later calls only scan blocks
// added since.
type Service struct {
	contract   ContractReader
	tracker    *tracker
	startBlock uint64
	log        zerolog.Logger
	now        func() uint64

	refreshMu sync.Mutex
}

func NewService(contract ContractReader, startBlock uint64, logger zerolog.Logger) *Service {
	return &Service{
		contract:   contract,
		tracker:    newTracker(),
		startBlock: startBlock,
		log:        logger,
		now:        func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// GetStats refreshes the event tracker and returns a consistent snapshot.
// Any ledger failure aborts the whole call; stats are never partial.
func (s *Service) GetStats(ctx context.Context) (stats.Stats, error) {
	if err := s.Refresh(ctx); err != nil {
		return stats.Stats{}, err
	}

	price, err := s.contract.Price(ctx)
	if err != nil {
		return stats.Stats{}, err
	}
	duration, err := s.contract.Duration(ctx)
	if err != nil {
		return stats.Stats{}, err
	}
	totalSubscribers, err := s.contract.TotalSubscribers(ctx)
	if err != nil {
		return stats.Stats{}, err
	}
	balance, err := s.contract.Balance(ctx)
	if err != nil {
		return stats.Stats{}, err
	}

	activeCount, revenue := s.tracker.snapshot(s.now())

	return stats.Stats{
		ActiveCount:      activeCount,
		TotalRevenue:     revenue,
		Price:            price,
		Duration:         duration,
		TotalSubscribers: totalSubscribers,
		Balance:          balance,
		Contract:         s.contract.Address(),
	}, nil
}

// Refresh folds any blocks mined since the last scan into the tracker.
// Concurrent callers serialize; the loser of the race sees the winner's
// work and usually scans an empty range.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	head, err := s.contract.HeadBlock(ctx)
	if err != nil {
		return err
	}

	from, ok := s.tracker.nextBlock()
	if !ok {
		from = s.startBlock
	}
	if from > head {
		return nil
	}

	events, err := s.contract.Events(ctx, from, head)
	if err != nil {
		return err
	}

	s.tracker.fold(events, head)
	if len(events) > 0 {
		s.log.Info().Int("events", len(events)).
			Uint64("fromBlock", from).Uint64("toBlock", head).
			Msg("folded ledger events")
	}
	return nil
}

// Poke asynchronously refreshes the tracker. Wired as the websocket log
// stream callback so pushed events shorten staleness; errors are only
// logged because the next GetStats refreshes anyway.
func (s *Service) Poke() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn().Err(err).Msg("background stats refresh failed")
		}
	}()
}
