package entity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/sha3"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

var validate = validator.New()

// Address is a 0x-prefixed, EIP-55 checksummed account identifier.
type Address string

// ParseAddress validates s and returns it in checksum form.
// Mixed-case input must carry a correct EIP-55 checksum; all-lowercase
// and all-uppercase hex are accepted as written by wallets that do not
// checksum.
func ParseAddress(s string) (Address, error) {
	if err := validate.Var(s, "required,eth_addr"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	hexPart := s[2:]
	lower := strings.ToLower(hexPart)
	checksummed := checksumHex(lower)

	if hexPart != lower && hexPart != strings.ToUpper(hexPart) && hexPart != checksummed {
		return "", fmt.Errorf("%w: bad checksum in %q", ErrInvalidAddress, s)
	}

	return Address("0x" + checksummed), nil
}

// MustAddress is ParseAddress for compile-time-known addresses in tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns the raw 20-byte account id, zero for a malformed value.
func (a Address) Bytes() [20]byte {
	var out [20]byte
	if len(a) != 42 {
		return out
	}
	b, err := hex.DecodeString(strings.ToLower(string(a[2:])))
	if err != nil || len(b) != 20 {
		return out
	}
	copy(out[:], b)
	return out
}

func (a Address) String() string { return string(a) }

// checksumHex applies EIP-55 casing to a lowercase 40-char hex string.
func checksumHex(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i := range out {
		if out[i] < 'a' || out[i] > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] -= 'a' - 'A'
		}
	}
	return string(out)
}
