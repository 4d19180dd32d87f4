package service

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"chainsub/internal/chain/entity"
)

// Contract function signatures of SubscriptionPayment. Selectors are
// derived at startup, no ABI JSON is shipped.
const (
	sigGetExpiry            = "getExpiry(address)"
	sigSubscriptionPrice    = "SUBSCRIPTION_PRICE()"
	sigSubscriptionDuration = "SUBSCRIPTION_DURATION()"
	sigTotalSubscribers     = "totalSubscribers()"
	sigTotalRevenue         = "totalRevenue()"
	sigGetBalance           = "getBalance()"

	sigEventSubscribed = "Subscribed(address,uint256,uint256)"
	sigEventCancelled  = "Cancelled(address)"
)

var (
	topicSubscribed = "0x" + hex.EncodeToString(keccak([]byte(sigEventSubscribed)))
	topicCancelled  = "0x" + hex.EncodeToString(keccak([]byte(sigEventCancelled)))
)

func keccak(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// encodeCall builds eth_call data: 4-byte selector plus one optional
// address argument left-padded to a 32-byte word.
func encodeCall(signature string, addr *entity.Address) string {
	data := keccak([]byte(signature))[:4]
	if addr != nil {
		var word [32]byte
		b := addr.Bytes()
		copy(word[12:], b[:])
		data = append(data, word[:]...)
	}
	return "0x" + hex.EncodeToString(data)
}

// decodeWord parses a single 32-byte return word from an eth_call result.
func decodeWord(result string) (*big.Int, error) {
	hexPart, ok := strings.CutPrefix(result, "0x")
	if !ok || len(hexPart) != 64 {
		return nil, fmt.Errorf("%w: eth_call result %q is not a 32-byte word", ErrMalformedResponse, result)
	}
	b, err := hex.DecodeString(hexPart)
	if err != nil {
		return nil, fmt.Errorf("%w: eth_call result %q: %v", ErrMalformedResponse, result, err)
	}
	return new(big.Int).SetBytes(b), nil
}

// decodeUint64Word is decodeWord for values that must fit a uint64
// (timestamps, durations, counters).
func decodeUint64Word(result string) (uint64, error) {
	v, err := decodeWord(result)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: value %s overflows uint64", ErrMalformedResponse, v)
	}
	return v.Uint64(), nil
}

// hexQuantity parses a JSON-RPC quantity ("0x1a2b") into a uint64.
func hexQuantity(q string) (uint64, error) {
	hexPart, ok := strings.CutPrefix(q, "0x")
	if !ok || hexPart == "" {
		return 0, fmt.Errorf("%w: bad quantity %q", ErrMalformedResponse, q)
	}
	v, ok := new(big.Int).SetString(hexPart, 16)
	if !ok || !v.IsUint64() {
		return 0, fmt.Errorf("%w: bad quantity %q", ErrMalformedResponse, q)
	}
	return v.Uint64(), nil
}

// hexBlockNumber formats a block number as a JSON-RPC quantity.
func hexBlockNumber(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

// topicAddress extracts the address from a 32-byte indexed topic.
func topicAddress(topic string) (entity.Address, error) {
	hexPart, ok := strings.CutPrefix(topic, "0x")
	if !ok || len(hexPart) != 64 || hexPart[:24] != strings.Repeat("0", 24) {
		return "", fmt.Errorf("%w: topic %q is not a padded address", ErrMalformedResponse, topic)
	}
	addr, err := entity.ParseAddress("0x" + strings.ToLower(hexPart[24:]))
	if err != nil {
		return "", fmt.Errorf("%w: topic %q: %v", ErrMalformedResponse, topic, err)
	}
	return addr, nil
}

// decodeLog turns a raw contract log into a payment event. The block
// timestamp is resolved separately by the caller.
func decodeLog(lg rpcLog) (entity.Event, error) {
	if len(lg.Topics) < 2 {
		return entity.Event{}, fmt.Errorf("%w: log with %d topics", ErrMalformedResponse, len(lg.Topics))
	}

	wallet, err := topicAddress(lg.Topics[1])
	if err != nil {
		return entity.Event{}, err
	}
	block, err := hexQuantity(lg.BlockNumber)
	if err != nil {
		return entity.Event{}, err
	}

	ev := entity.Event{Wallet: wallet, BlockNumber: block, Amount: new(big.Int)}

	switch strings.ToLower(lg.Topics[0]) {
	case topicSubscribed:
		ev.Kind = entity.EventSubscribed
		dataHex, ok := strings.CutPrefix(lg.Data, "0x")
		if !ok || len(dataHex) != 128 {
			return entity.Event{}, fmt.Errorf("%w: Subscribed log data %q", ErrMalformedResponse, lg.Data)
		}
		amount, err := decodeWord("0x" + dataHex[:64])
		if err != nil {
			return entity.Event{}, err
		}
		expiry, err := decodeUint64Word("0x" + dataHex[64:])
		if err != nil {
			return entity.Event{}, err
		}
		ev.Amount = amount
		ev.Expiry = expiry
	case topicCancelled:
		ev.Kind = entity.EventCancelled
	default:
		return entity.Event{}, fmt.Errorf("%w: unknown event topic %s", ErrMalformedResponse, lg.Topics[0])
	}

	return ev, nil
}
