package models

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies the lifecycle event variants emitted by the venue.
type EventKind int

const (
	EventCreated EventKind = iota
	EventExecuted
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventExecuted:
		return "executed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Sequence is the venue-assigned position of a log record. Events must
// be merged in non-decreasing sequence order regardless of arrival order.
type Sequence struct {
	Block uint64
	Index uint
}

// Less reports whether s was emitted strictly before other.
func (s Sequence) Less(other Sequence) bool {
	if s.Block != other.Block {
		return s.Block < other.Block
	}
	return s.Index < other.Index
}

// LifecycleEvent is a fully decoded venue log record. Kind-specific
// fields are populated at the normalizer boundary; downstream code
// never touches raw log payloads.
type LifecycleEvent struct {
	Kind     EventKind
	IntentID uint64
	Seq      Sequence

	// Created payload
	Owner          common.Address
	TokenIn        common.Address
	TokenOut       common.Address
	AmountIn       *big.Int
	TargetPrice    *big.Int
	TargetTick     int32
	Expiry         uint64
	MaxSlippageBps uint16

	// Executed payload
	Beneficiary common.Address
	OraclePrice *big.Int
	AnsweredAt  uint64
	FastPath    bool
}
