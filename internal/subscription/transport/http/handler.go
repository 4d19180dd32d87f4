package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainsub/internal/chain/entity"
	chainservice "chainsub/internal/chain/service"
	"chainsub/internal/subscription"
)

// StatusReader is what the handlers need from the state reader.
type StatusReader interface {
	GetStatus(ctx context.Context, wallet string) (subscription.Status, error)
}

type Handler struct {
	Service StatusReader
}

func NewSubscriptionHandler(s StatusReader) *Handler {
	return &Handler{Service: s}
}

type statusResponse struct {
	Wallet        string `json:"wallet"`
	IsActive      bool   `json:"isActive"`
	Expiry        uint64 `json:"expiry"`
	ExpiryDate    string `json:"expiryDate"`
	Remaining     uint64 `json:"remaining"`
	RemainingTime string `json:"remainingTime"`
}

type expiryResponse struct {
	Wallet     string `json:"wallet"`
	Expiry     uint64 `json:"expiry"`
	ExpiryDate string `json:"expiryDate"`
}

type remainingResponse struct {
	Wallet        string `json:"wallet"`
	Remaining     uint64 `json:"remaining"`
	RemainingTime string `json:"remainingTime"`
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, statusResponse{
		Wallet:        st.Wallet.String(),
		IsActive:      st.IsActive,
		Expiry:        st.Expiry,
		ExpiryDate:    formatTimestamp(st.Expiry),
		Remaining:     st.Remaining,
		RemainingTime: formatDuration(st.Remaining),
	})
}

func (h *Handler) GetExpiry(w http.ResponseWriter, r *http.Request) {
	st, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, expiryResponse{
		Wallet:     st.Wallet.String(),
		Expiry:     st.Expiry,
		ExpiryDate: formatTimestamp(st.Expiry),
	})
}

func (h *Handler) GetRemaining(w http.ResponseWriter, r *http.Request) {
	st, ok := h.fetch(w, r)
	if !ok {
		return
	}
	writeJSON(w, remainingResponse{
		Wallet:        st.Wallet.String(),
		Remaining:     st.Remaining,
		RemainingTime: formatDuration(st.Remaining),
	})
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (subscription.Status, bool) {
	wallet := chi.URLParam(r, "wallet")
	st, err := h.Service.GetStatus(r.Context(), wallet)
	if err != nil {
		writeError(w, err)
		return subscription.Status{}, false
	}
	return st, true
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	switch {
	case errors.Is(err, entity.ErrInvalidAddress):
		status = http.StatusBadRequest
		kind = "invalid_address"
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

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
