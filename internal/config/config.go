package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is read once at process start and never mutated afterwards.
type Config struct {
	// RPCURL is the HTTP JSON-RPC endpoint of the chain.
	RPCURL string `validate:"required,url"`
	// WSURL optionally enables the websocket log subscription.
	WSURL string `validate:"omitempty,url"`
	// ContractAddress is the deployed SubscriptionPayment contract.
	ContractAddress string `validate:"required,eth_addr"`
	// RequestTimeout bounds every chain RPC call.
	RequestTimeout time.Duration `validate:"required"`
	// CacheTTL bounds status-read staleness; zero disables the cache.
	CacheTTL time.Duration
	// StartBlock is the contract deployment block, where event backfill
	// begins.
	StartBlock uint64
	ListenAddr string `validate:"required"`
}

var validate = validator.New()

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	timeout, err := durationEnv("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("CACHE_TTL", 0)
	if err != nil {
		return nil, err
	}
	startBlock, err := uintEnv("START_BLOCK", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCURL:          os.Getenv("RPC_URL"),
		WSURL:           os.Getenv("WS_URL"),
		ContractAddress: os.Getenv("CONTRACT_ADDRESS"),
		RequestTimeout:  timeout,
		CacheTTL:        cacheTTL,
		StartBlock:      startBlock,
		ListenAddr:      envOr("LISTEN_ADDR", ":8080"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func uintEnv(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
