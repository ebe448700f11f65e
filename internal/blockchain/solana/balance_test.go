package solana

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenAccountData(amount uint64) []byte {
	data := make([]byte, 165) // full SPL token account size
	binary.LittleEndian.PutUint64(data[tokenAmountOffset:tokenAmountOffset+8], amount)
	return data
}

func TestDecodeRawBalance(t *testing.T) {
	balance, err := decodeRawBalance(tokenAccountData(1234567), 6)
	require.NoError(t, err)
	assert.InDelta(t, 1.234567, balance, 1e-9)
}

func TestDecodeRawBalanceZero(t *testing.T) {
	balance, err := decodeRawBalance(tokenAccountData(0), 6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestDecodeRawBalanceMinimumLength(t *testing.T) {
	data := tokenAccountData(5000000)[:tokenAccountMinLen]

	balance, err := decodeRawBalance(data, 6)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, balance, 1e-9)
}

func TestDecodeRawBalanceTooShort(t *testing.T) {
	_, err := decodeRawBalance(make([]byte, 71), 6)
	assert.Error(t, err)
}

func TestUiAmountPrefersNodeValue(t *testing.T) {
	ui := 42.5
	balance, err := uiAmount(&ui, "99000000", 6)
	require.NoError(t, err)
	assert.Equal(t, 42.5, balance)
}

func TestUiAmountParsesRawString(t *testing.T) {
	balance, err := uiAmount(nil, "2500000", 6)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, balance, 1e-9)
}

func TestUiAmountEmpty(t *testing.T) {
	balance, err := uiAmount(nil, "", 6)
	require.NoError(t, err)
	assert.Equal(t, 0.0, balance)
}

func TestUiAmountMalformed(t *testing.T) {
	_, err := uiAmount(nil, "not-a-number", 6)
	assert.Error(t, err)
}

func TestNewBalanceReaderValidatesKeys(t *testing.T) {
	_, err := NewBalanceReader(nil, "not-base58!", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", 6, nil)
	assert.Error(t, err)

	_, err = NewBalanceReader(nil, "9ApaAe39Z8GEXfqm7F7HL545N4J4tN7RhF8FhS88pRNp", "bad mint", 6, nil)
	assert.Error(t, err)
}
