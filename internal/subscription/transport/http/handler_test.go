package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainsub/internal/chain/entity"
	chainservice "chainsub/internal/chain/service"
	"chainsub/internal/subscription"
)

type fakeReader struct {
	status subscription.Status
	err    error
}

func (f *fakeReader) GetStatus(_ context.Context, wallet string) (subscription.Status, error) {
	if f.err != nil {
		return subscription.Status{}, f.err
	}
	// Real readers validate before anything else; mirror that here.
	if _, err := entity.ParseAddress(wallet); err != nil {
		return subscription.Status{}, err
	}
	return f.status, nil
}

func newRouter(reader StatusReader) http.Handler {
	h := NewSubscriptionHandler(reader)
	r := chi.NewRouter()
	r.Get("/status/{wallet}", h.GetStatus)
	r.Get("/expiry/{wallet}", h.GetExpiry)
	r.Get("/remaining/{wallet}", h.GetRemaining)
	return r
}

const walletHex = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func doGet(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	handler.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	reader := &fakeReader{status: subscription.Status{
		Wallet:    entity.MustAddress(walletHex),
		IsActive:  true,
		Expiry:    1_737_216_000,
		Remaining: 86_400,
	}}

	rec := doGet(t, newRouter(reader), "/status/"+walletHex)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, walletHex, resp.Wallet)
	assert.True(t, resp.IsActive)
	assert.Equal(t, uint64(1_737_216_000), resp.Expiry)
	assert.Equal(t, uint64(86_400), resp.Remaining)
	assert.Equal(t, "1 day", resp.RemainingTime)
	assert.NotEmpty(t, resp.ExpiryDate)
}

func TestStatusEndpointNeverSubscribed(t *testing.T) {
	reader := &fakeReader{status: subscription.Status{
		Wallet: entity.MustAddress(walletHex),
	}}

	rec := doGet(t, newRouter(reader), "/status/"+walletHex)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.IsActive)
	assert.Zero(t, resp.Expiry)
	assert.Equal(t, "never subscribed", resp.ExpiryDate)
	assert.Equal(t, "expired", resp.RemainingTime)
}

func TestStatusEndpointMalformedWallet(t *testing.T) {
	rec := doGet(t, newRouter(&fakeReader{}), "/status/not-an-address")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_address", resp.Kind)
	assert.Contains(t, resp.Error, "not-an-address")
}

func TestStatusEndpointLedgerUnreachable(t *testing.T) {
	reader := &fakeReader{err: chainservice.ErrLedgerUnreachable}

	for _, path := range []string{
		"/status/" + walletHex,
		"/expiry/" + walletHex,
		"/remaining/" + walletHex,
	} {
		rec := doGet(t, newRouter(reader), path)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, "path %s", path)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ledger_unreachable", resp.Kind)
	}
}

func TestStatusEndpointMalformedLedgerResponse(t *testing.T) {
	reader := &fakeReader{err: chainservice.ErrMalformedResponse}

	rec := doGet(t, newRouter(reader), "/status/"+walletHex)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "malformed_ledger_response", resp.Kind)
}

func TestExpiryEndpoint(t *testing.T) {
	reader := &fakeReader{status: subscription.Status{
		Wallet: entity.MustAddress(walletHex),
		Expiry: 1_737_216_000,
	}}

	rec := doGet(t, newRouter(reader), "/expiry/"+walletHex)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp expiryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1_737_216_000), resp.Expiry)
}

func TestRemainingEndpoint(t *testing.T) {
	reader := &fakeReader{status: subscription.Status{
		Wallet:    entity.MustAddress(walletHex),
		IsActive:  true,
		Remaining: 90_060, // 1 day, 1 hour, 1 minute
	}}

	rec := doGet(t, newRouter(reader), "/remaining/"+walletHex)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp remainingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(90_060), resp.Remaining)
	assert.Equal(t, "1 day, 1 hour, 1 minute", resp.RemainingTime)
}
