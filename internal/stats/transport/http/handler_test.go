package http

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainsub/internal/chain/entity"
	chainservice "chainsub/internal/chain/service"
	"chainsub/internal/stats"
)

type fakeProvider struct {
	stats stats.Stats
	err   error
}

func (f *fakeProvider) GetStats(context.Context) (stats.Stats, error) {
	return f.stats, f.err
}

func serveStats(t *testing.T, provider StatsProvider) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/stats", NewStatsHandler(provider).GetStats)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	return rec
}

func TestStatsEndpoint(t *testing.T) {
	provider := &fakeProvider{stats: stats.Stats{
		ActiveCount:      3,
		TotalRevenue:     big.NewInt(42_000_000_000_000_000), // 0.042 ETH
		Price:            big.NewInt(1_000_000_000_000_000),  // 0.001 ETH
		Duration:         2_592_000,
		TotalSubscribers: 42,
		Balance:          big.NewInt(42_000_000_000_000_000),
		Contract:         entity.MustAddress("0x000000000000000000000000000000000000c0de"),
	}}

	rec := serveStats(t, provider)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ActiveCount)
	assert.Equal(t, "42000000000000000", resp.TotalRevenue)
	assert.Equal(t, "0.042", resp.TotalRevenueEth)
	assert.Equal(t, "0.001", resp.SubscriptionPriceEth)
	assert.Equal(t, uint64(2_592_000), resp.SubscriptionDurationSecs)
	assert.Equal(t, "30", resp.SubscriptionDurationDays)
	assert.Equal(t, uint64(42), resp.TotalSubscribers)
	assert.Equal(t, entity.MustAddress("0x000000000000000000000000000000000000c0de").String(), resp.ContractAddress)
}

func TestStatsEndpointLedgerUnreachable(t *testing.T) {
	rec := serveStats(t, &fakeProvider{err: chainservice.ErrLedgerUnreachable})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ledger_unreachable", resp.Kind)
	// An error body must never carry partial stats fields.
	assert.NotContains(t, rec.Body.String(), "activeCount")
}

func TestStatsEndpointMalformedResponse(t *testing.T) {
	rec := serveStats(t, &fakeProvider{err: chainservice.ErrMalformedResponse})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
