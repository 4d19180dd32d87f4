package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"chainsub/internal/metrics"
)

var (
	// ErrLedgerUnreachable means the chain endpoint could not be reached or
	// did not answer in time. Retryable by the caller.
	ErrLedgerUnreachable = errors.New("ledger unreachable")
	// ErrMalformedResponse means the endpoint answered with data that
	// violates the expected shape. Not retryable, logged and surfaced.
	ErrMalformedResponse = errors.New("malformed ledger response")
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber"`
	Removed     bool     `json:"removed"`
}

type rpcBlock struct {
	Timestamp string `json:"timestamp"`
}

// RPCClient is a minimal read-only Ethereum JSON-RPC client. All calls go
// through a circuit breaker and are bounded by the per-request timeout of
// the underlying HTTP client plus the caller's context.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	log        zerolog.Logger
	nextID     atomic.Uint64
}

func NewRPCClient(endpoint string, timeout time.Duration, logger zerolog.Logger) *RPCClient {
	c := &RPCClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chain-rpc",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return c
}

// ChainID queries eth_chainId, used as a startup connectivity probe.
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	var result string
	if err := c.call(ctx, "eth_chainId", []any{}, &result); err != nil {
		return nil, err
	}
	id, err := hexQuantity(result)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(id), nil
}

// BlockNumber returns the current head block number.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	var result string
	if err := c.call(ctx, "eth_blockNumber", []any{}, &result); err != nil {
		return 0, err
	}
	return hexQuantity(result)
}

// CallContract performs eth_call against the latest block and returns the
// raw hex result.
func (c *RPCClient) CallContract(ctx context.Context, to, data string) (string, error) {
	params := []any{
		map[string]string{"to": to, "data": data},
		"latest",
	}
	var result string
	if err := c.call(ctx, "eth_call", params, &result); err != nil {
		return "", err
	}
	return result, nil
}

// Logs fetches contract logs for a block range via eth_getLogs.
func (c *RPCClient) Logs(ctx context.Context, address string, fromBlock, toBlock uint64, topics []string) ([]rpcLog, error) {
	filter := map[string]any{
		"fromBlock": hexBlockNumber(fromBlock),
		"toBlock":   hexBlockNumber(toBlock),
		"address":   address,
	}
	if len(topics) > 0 {
		// One position, OR-ed alternatives.
		filter["topics"] = []any{topics}
	}

	var logs []rpcLog
	if err := c.call(ctx, "eth_getLogs", []any{filter}, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// BlockTimestamp returns the timestamp of a block by number.
func (c *RPCClient) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	var block *rpcBlock
	if err := c.call(ctx, "eth_getBlockByNumber", []any{hexBlockNumber(number), false}, &block); err != nil {
		return 0, err
	}
	if block == nil {
		return 0, fmt.Errorf("%w: block %d not found", ErrMalformedResponse, number)
	}
	return hexQuantity(block.Timestamp)
}

func (c *RPCClient) call(ctx context.Context, method string, params any, out any) error {
	start := time.Now()

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, method, params)
	})

	duration := time.Since(start).Seconds()
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ChainRPCRequestsTotal.WithLabelValues(method, status).Inc()
	metrics.ChainRPCRequestDuration.WithLabelValues(method).Observe(duration)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: circuit breaker open", ErrLedgerUnreachable)
		}
		return err
	}

	if err := json.Unmarshal(result.(json.RawMessage), out); err != nil {
		return fmt.Errorf("%w: %s result: %v", ErrMalformedResponse, method, err)
	}
	return nil
}

func (c *RPCClient) doRequest(ctx context.Context, method string, params any) (json.RawMessage, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Msg("chain RPC request failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrLedgerUnreachable, method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLedgerUnreachable, method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status code %d", ErrLedgerUnreachable, method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		c.log.Error().Err(err).Str("method", method).Msg("undecodable chain RPC response")
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, method, err)
	}
	if rpcResp.Error != nil {
		c.log.Error().Str("method", method).Int("code", rpcResp.Error.Code).
			Str("message", rpcResp.Error.Message).Msg("chain RPC error")
		return nil, fmt.Errorf("%w: %s: RPC error %d: %s",
			ErrMalformedResponse, method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == nil {
		return nil, fmt.Errorf("%w: %s: missing result", ErrMalformedResponse, method)
	}

	return rpcResp.Result, nil
}
