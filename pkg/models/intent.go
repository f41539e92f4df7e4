package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Intent is the replica of an intent record stored on the venue.
// Once Executed or Cancelled is set the record is terminal and no
// field may change again; the two flags are mutually exclusive.
type Intent struct {
	ID             uint64
	Owner          common.Address
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	MaxSlippageBps uint16
	Expiry         uint64
	Nonce          uint64
	TargetTick     int32
	Executed       bool
	Cancelled      bool
	CreatedAt      uint64
}

// Terminal reports whether the intent has reached a final state.
func (i Intent) Terminal() bool {
	return i.Executed || i.Cancelled
}

// CreateParams holds the caller-supplied parameters for a new intent.
type CreateParams struct {
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	MaxSlippageBps uint16
	Expiry         uint64
	TargetTickHint int32
}
