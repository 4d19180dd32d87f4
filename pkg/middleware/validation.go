package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chainsub/internal/chain/entity"
)

// ErrorResponse is the JSON error shape shared by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ValidateWalletParam rejects requests with a malformed {wallet} path
// parameter before any handler or ledger work happens. Handlers still
// re-validate; this only short-circuits the obvious garbage.
func ValidateWalletParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet := chi.URLParam(r, "wallet")
		if _, err := entity.ParseAddress(wallet); err != nil {
			resp := ErrorResponse{Error: err.Error(), Kind: "invalid_address"}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(resp)
			return
		}

		next.ServeHTTP(w, r)
	})
}
