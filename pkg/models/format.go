package models

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// AmountDecimals is the fixed-point scale of AmountIn (USDC units).
	AmountDecimals = 6
	// PriceDecimals is the fixed-point scale of oracle prices.
	PriceDecimals = 8
)

// FormatUnits renders a fixed-point quantity as a decimal string,
// trimming trailing zeros but always keeping two fractional digits.
// Oracle answers are signed, so the sign is peeled off before the
// split; otherwise values between -1 and 0 would lose it.
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	abs := new(big.Int).Abs(value)
	sign := ""
	if value.Sign() < 0 {
		sign = "-"
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	fracStr := fmt.Sprintf("%0*s", decimals, frac.String())
	fracStr = strings.TrimRight(fracStr, "0")
	for len(fracStr) < 2 {
		fracStr += "0"
	}
	return sign + whole.String() + "." + fracStr
}

// FormatAmount renders a source-asset quantity.
func FormatAmount(value *big.Int) string {
	return FormatUnits(value, AmountDecimals)
}

// FormatPrice renders an oracle-scaled price.
func FormatPrice(value *big.Int) string {
	return FormatUnits(value, PriceDecimals)
}
