package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/shopspring/decimal"

	chainservice "chainsub/internal/chain/service"
	"chainsub/internal/stats"
)

// StatsProvider is what the handler needs from the aggregator.
type StatsProvider interface {
	GetStats(ctx context.Context) (stats.Stats, error)
}

type Handler struct {
	Service StatsProvider
}

func NewStatsHandler(s StatsProvider) *Handler {
	return &Handler{Service: s}
}

type statsResponse struct {
	ActiveCount              int    `json:"activeCount"`
	TotalRevenue             string `json:"totalRevenue"` // wei
	TotalRevenueEth          string `json:"totalRevenueEth"`
	SubscriptionPriceWei     string `json:"subscriptionPriceWei"`
	SubscriptionPriceEth     string `json:"subscriptionPriceEth"`
	SubscriptionDurationSecs uint64 `json:"subscriptionDurationSeconds"`
	SubscriptionDurationDays string `json:"subscriptionDurationDays"`
	TotalSubscribers         uint64 `json:"totalSubscribers"`
	ContractBalanceWei       string `json:"contractBalanceWei"`
	ContractBalanceEth       string `json:"contractBalanceEth"`
	ContractAddress          string `json:"contractAddress"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Service.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := statsResponse{
		ActiveCount:              st.ActiveCount,
		TotalRevenue:             st.TotalRevenue.String(),
		TotalRevenueEth:          weiToEth(st.TotalRevenue),
		SubscriptionPriceWei:     st.Price.String(),
		SubscriptionPriceEth:     weiToEth(st.Price),
		SubscriptionDurationSecs: st.Duration,
		SubscriptionDurationDays: decimal.NewFromUint64(st.Duration).Div(decimal.NewFromInt(86_400)).String(),
		TotalSubscribers:         st.TotalSubscribers,
		ContractBalanceWei:       st.Balance.String(),
		ContractBalanceEth:       weiToEth(st.Balance),
		ContractAddress:          st.Contract.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// weiToEth shifts a wei amount by 18 decimal places.
func weiToEth(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -18).String()
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.Is(err, chainservice.ErrLedgerUnreachable):
		status = http.StatusServiceUnavailable
		kind = "ledger_unreachable"
	case errors.Is(err, chainservice.ErrMalformedResponse):
		kind = "malformed_ledger_response"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Kind: kind})
}
