package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chainsub/internal/chain/entity"
	"chainsub/internal/metrics"
)

const reconnectDelay = 5 * time.Second

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Params *struct {
		Subscription string `json:"subscription"`
		Result       rpcLog `json:"result"`
	} `json:"params,omitempty"`
	Error *rpcError `json:"error,omitempty"`
}

// LogStream subscribes to the contract's logs over a websocket endpoint
// (eth_subscribe) and delivers decoded events through OnEvent. It is a
// latency optimization for the stats tracker; the tracker stays correct
// without it because it also pulls logs on demand. Events delivered here
// carry no block timestamp.
type LogStream struct {
	endpoint string
	contract entity.Address
	log      zerolog.Logger

	// OnEvent is called from the read loop for every decoded event.
	OnEvent func(ev entity.Event)

	mu        sync.Mutex
	conn      *websocket.Conn
	cancel    context.CancelFunc
	isRunning bool
}

func NewLogStream(endpoint string, contract entity.Address, logger zerolog.Logger) *LogStream {
	return &LogStream{endpoint: endpoint, contract: contract, log: logger}
}

// Start connects and keeps the subscription alive until ctx is cancelled
// or Stop is called. Connection failures are logged and retried.
func (s *LogStream) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop closes the connection and stops the reconnect loop.
func (s *LogStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.isRunning = false
}

func (s *LogStream) run(ctx context.Context) {
	for {
		if err := s.connectAndRead(ctx); err != nil {
			s.log.Warn().Err(err).Msg("log stream disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *LogStream) connectAndRead(ctx context.Context) error {
	dialer := &websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	metrics.ChainWSConnections.Inc()
	defer func() {
		metrics.ChainWSConnections.Dec()
		conn.Close()
	}()

	sub := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params: []any{
			"logs",
			map[string]any{
				"address": s.contract.String(),
				"topics":  []any{[]string{topicSubscribed, topicCancelled}},
			},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}

	s.log.Info().Str("endpoint", s.endpoint).Msg("subscribed to contract logs")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch {
		case msg.Error != nil:
			s.log.Error().Int("code", msg.Error.Code).
				Str("message", msg.Error.Message).Msg("log subscription error")
		case msg.Method == "eth_subscription" && msg.Params != nil:
			s.handleLog(msg.Params.Result)
		}
	}
}

func (s *LogStream) handleLog(lg rpcLog) {
	if lg.Removed {
		return
	}
	ev, err := decodeLog(lg)
	if err != nil {
		s.log.Error().Err(err).Msg("dropping undecodable log")
		return
	}
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}
