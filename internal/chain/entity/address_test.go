package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddressChecksumsLowercase(t *testing.T) {
	// Known EIP-55 vector.
	addr, err := ParseAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, Address("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"), addr)
}

func TestParseAddressAcceptsUppercase(t *testing.T) {
	addr, err := ParseAddress("0x" + strings.ToUpper("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr.String())
}

func TestParseAddressAcceptsValidChecksum(t *testing.T) {
	addr, err := ParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr.String())
}

func TestParseAddressRejectsBadChecksum(t *testing.T) {
	_, err := ParseAddress("0x5Aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAddress))
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"not-an-address",
		"0x1234",
		"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0xzzzeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00",
	} {
		_, err := ParseAddress(in)
		assert.ErrorIs(t, err, ErrInvalidAddress, "input %q", in)
	}
}

func TestAddressBytes(t *testing.T) {
	addr := MustAddress("0x000000000000000000000000000000000000dEaD")
	b := addr.Bytes()
	assert.Equal(t, byte(0xde), b[18])
	assert.Equal(t, byte(0xad), b[19])
}
