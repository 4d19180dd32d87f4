// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chainsub/internal/chain/entity"
	chainservice "chainsub/internal/chain/service"
	"chainsub/internal/config"
	"chainsub/internal/metrics"
	statsservice "chainsub/internal/stats/service"
	statshttp "chainsub/internal/stats/transport/http"
	subscriptionservice "chainsub/internal/subscription/service"
	subscriptionhttp "chainsub/internal/subscription/transport/http"
	"chainsub/pkg/middleware"
)

var server *http.Server

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	log.Info().Msg("chainsub API starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	log.Info().Msg("config loaded")

	metrics.InitMetrics()

	contractAddr, err := entity.ParseAddress(cfg.ContractAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid contract address")
	}

	rpc := chainservice.NewRPCClient(cfg.RPCURL, cfg.RequestTimeout, log.Logger)

	// The service only ever reads; the probe also fails fast on a dead
	// endpoint instead of at the first user request.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	chainID, err := rpc.ChainID(ctx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("chain RPC connection failed")
	}
	log.Info().Str("chainId", chainID.String()).
		Str("contract", contractAddr.String()).Msg("connected to chain")

	contract, err := chainservice.NewContract(rpc, contractAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("contract setup failed")
	}

	// --- service and transport layers ---
	statusCache := subscriptionservice.NewStatusCache(cfg.CacheTTL)
	subService := subscriptionservice.NewService(contract, statusCache)
	subHandler := subscriptionhttp.NewSubscriptionHandler(subService)

	statsService := statsservice.NewService(contract, cfg.StartBlock, log.Logger)
	statsHandler := statshttp.NewStatsHandler(statsService)

	// Optional websocket log stream: pushes a refresh when the contract
	// emits, so /stats stays fresh between polls.
	var logStream *chainservice.LogStream
	if cfg.WSURL != "" {
		logStream = chainservice.NewLogStream(cfg.WSURL, contractAddr, log.Logger)
		logStream.OnEvent = func(entity.Event) { statsService.Poke() }
		logStream.Start(context.Background())
	}

	rateLimiter := middleware.NewRateLimiter(100, time.Minute)

	// --- router ---
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.MetricsMiddleware)
	r.Use(rateLimiter.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":          "ok",
			"contractAddress": contractAddr.String(),
		})
	})

	r.Group(func(wr chi.Router) {
		wr.Use(middleware.ValidateWalletParam)
		wr.Get("/status/{wallet}", subHandler.GetStatus)
		wr.Get("/expiry/{wallet}", subHandler.GetExpiry)
		wr.Get("/remaining/{wallet}", subHandler.GetRemaining)
	})

	r.Get("/stats", statsHandler.GetStats)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": "endpoint not found",
			"availableEndpoints": []string{
				"GET /health",
				"GET /status/{wallet}",
				"GET /expiry/{wallet}",
				"GET /remaining/{wallet}",
				"GET /stats",
				"GET /metrics",
			},
		})
	})

	server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("server running")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info().Msg("shutdown signal received, starting graceful shutdown")
		if logStream != nil {
			logStream.Stop()
		}
		shutdownServer()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped")
}
