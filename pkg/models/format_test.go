package models

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		decimals int
		expected string
	}{
		{"nil value", nil, 6, "0"},
		{"whole amount", big.NewInt(250_000_000), 6, "250.00"},
		{"fractional amount", big.NewInt(1_500_000), 6, "1.50"},
		{"sub-unit amount", big.NewInt(123), 6, "0.000123"},
		{"zero", big.NewInt(0), 6, "0.00"},
		{"price scale", big.NewInt(3_000_12345678), 8, "3000.12345678"},
		{"price trailing zeros trimmed", big.NewInt(3_000_10000000), 8, "3000.10"},
		{"negative whole price", big.NewInt(-3_000_50000000), 8, "-3000.50"},
		{"negative fraction keeps the sign", big.NewInt(-50_000_000), 8, "-0.50"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatUnits(tc.value, tc.decimals))
		})
	}

	t.Run("input is not mutated", func(t *testing.T) {
		value := big.NewInt(-1_234_567)
		FormatUnits(value, 6)
		assert.Equal(t, big.NewInt(-1_234_567), value)
	})
}

func TestTerminal(t *testing.T) {
	assert.False(t, Intent{}.Terminal())
	assert.True(t, Intent{Executed: true}.Terminal())
	assert.True(t, Intent{Cancelled: true}.Terminal())
}

func TestSequenceLess(t *testing.T) {
	assert.True(t, Sequence{Block: 1, Index: 5}.Less(Sequence{Block: 2, Index: 0}))
	assert.True(t, Sequence{Block: 1, Index: 0}.Less(Sequence{Block: 1, Index: 1}))
	assert.False(t, Sequence{Block: 1, Index: 1}.Less(Sequence{Block: 1, Index: 1}))
	assert.False(t, Sequence{Block: 2, Index: 0}.Less(Sequence{Block: 1, Index: 9}))
}
