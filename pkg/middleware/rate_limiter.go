package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window per-IP limiter. Windows reset for all
// clients at once, which is coarse but cheap and good enough for a
// public read-only API.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	requests  map[string]int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		window:    window,
		requests:  make(map[string]int),
		lastReset: time.Now(),
	}
}

func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if time.Since(r.lastReset) > r.window {
		r.requests = make(map[string]int)
		r.lastReset = time.Now()
	}

	count := r.requests[ip]
	if count >= r.limit {
		return false
	}

	r.requests[ip] = count + 1
	return true
}

func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := req.RemoteAddr
		if !r.Allow(ip) {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			log.Warn().Str("ip", ip).Msg("rate limit exceeded")
			return
		}

		next.ServeHTTP(w, req)
	})
}
