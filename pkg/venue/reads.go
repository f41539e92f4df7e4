package venue

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
)

// ReadIntent fetches the authoritative intent record from the venue.
// Returns ErrNotFound for an id the venue has never assigned.
func (c *Client) ReadIntent(ctx context.Context, id uint64) (models.Intent, error) {
	raw, err := c.hook.GetIntent(&bind.CallOpts{Context: ctx}, new(big.Int).SetUint64(id))
	if err != nil {
		metrics.RPCErrors.WithLabelValues("getIntent").Inc()
		return models.Intent{}, fmt.Errorf("failed to read intent %d: %v", id, err)
	}

	// The venue returns a zero record for ids it never assigned.
	if raw.User == (common.Address{}) {
		return models.Intent{}, ErrNotFound
	}

	metrics.DirectReads.Inc()
	return intentFromVenue(id, raw), nil
}

// NextIntentID returns the exclusive upper bound of ever-created ids.
func (c *Client) NextIntentID(ctx context.Context) (uint64, error) {
	next, err := c.hook.NextIntentId(&bind.CallOpts{Context: ctx})
	if err != nil {
		metrics.RPCErrors.WithLabelValues("nextIntentId").Inc()
		return 0, fmt.Errorf("failed to read next intent id: %v", err)
	}
	return next.Uint64(), nil
}

// BalanceOf reads the source-asset balance of an account.
func (c *Client) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := c.tokenIn.BalanceOf(&bind.CallOpts{Context: ctx}, account)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("balanceOf").Inc()
		return nil, fmt.Errorf("failed to read balance: %v", err)
	}
	return balance, nil
}

// Allowance reads the source-asset allowance granted to the venue.
func (c *Client) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	allowance, err := c.tokenIn.Allowance(&bind.CallOpts{Context: ctx}, owner, c.hookAddr)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("allowance").Inc()
		return nil, fmt.Errorf("failed to read allowance: %v", err)
	}
	return allowance, nil
}

// LatestRoundData reads the guidance price feed. The answer is used for
// user guidance only, never for lifecycle correctness.
func (c *Client) LatestRoundData(ctx context.Context) (*big.Int, time.Time, error) {
	round, err := c.oracle.LatestRoundData(&bind.CallOpts{Context: ctx})
	if err != nil {
		metrics.RPCErrors.WithLabelValues("latestRoundData").Inc()
		return nil, time.Time{}, fmt.Errorf("failed to read reference feed: %v", err)
	}
	return round.Answer, time.Unix(round.UpdatedAt.Int64(), 0), nil
}

// intentFromVenue converts the raw contract tuple into the replica model.
func intentFromVenue(id uint64, raw contracts.SniperTypesIntent) models.Intent {
	return models.Intent{
		ID:             id,
		Owner:          raw.User,
		TokenIn:        raw.TokenIn,
		TokenOut:       raw.TokenOut,
		AmountIn:       raw.AmountIn,
		TargetPrice:    raw.TargetPrice,
		MaxSlippageBps: raw.MaxSlippageBps,
		Expiry:         raw.Expiry.Uint64(),
		Nonce:          raw.Nonce.Uint64(),
		TargetTick:     int32(raw.TargetTick.Int64()),
		Executed:       raw.Executed,
		Cancelled:      raw.Cancelled,
		CreatedAt:      raw.CreatedAt,
	}
}
