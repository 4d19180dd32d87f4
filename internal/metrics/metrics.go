package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// Chain RPC metrics
	ChainRPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_rpc_requests_total",
			Help: "Total number of chain JSON-RPC requests",
		},
		[]string{"method", "status"},
	)
	ChainRPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chain_rpc_request_duration_seconds",
			Help: "Duration of chain JSON-RPC requests in seconds",
		},
		[]string{"method"},
	)
	ChainWSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chain_websocket_connections",
			Help: "Number of active chain log subscriptions",
		},
	)

	// Subscription tracking metrics
	TrackedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_subscribers_total",
			Help: "Number of distinct wallets seen in the event history",
		},
	)
	StatusCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_cache_requests_total",
			Help: "Status cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestsInFlight)

	prometheus.MustRegister(ChainRPCRequestsTotal)
	prometheus.MustRegister(ChainRPCRequestDuration)
	prometheus.MustRegister(ChainWSConnections)

	prometheus.MustRegister(TrackedSubscribers)
	prometheus.MustRegister(StatusCacheRequests)

	prometheus.MustRegister(prometheus.NewGoCollector())
	prometheus.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
}
