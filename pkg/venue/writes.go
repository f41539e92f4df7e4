package venue

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/models"
)

// transactOpts builds per-submission options from the session auth.
// Submissions are serialized so concurrent flows cannot race the
// account nonce.
func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if c.auth == nil {
		return nil, ErrReadOnly
	}

	gasPrice, err := c.suggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	opts := *c.auth
	opts.Context = ctx
	opts.GasPrice = gasPrice
	return &opts, nil
}

// SubmitApprove submits a source-asset approval for the venue as
// spender. Returns the pending transaction; confirmation is a separate
// observation via WaitMined.
func (c *Client) SubmitApprove(ctx context.Context, amount *big.Int) (*types.Transaction, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.tokenIn.Approve(opts, c.hookAddr, amount)
	if err != nil {
		return nil, classifyRevert(fmt.Errorf("failed to submit approval: %v", err))
	}
	c.logger.InfoWithScope(logger.Venue, "Approval submitted: %s", tx.Hash().Hex())
	return tx, nil
}

// SubmitCreate submits a new intent. The assigned id is only knowable
// from the confirmation receipt (CreatedIDFromReceipt).
func (c *Client) SubmitCreate(ctx context.Context, params models.CreateParams) (*types.Transaction, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.hook.CreateIntent(opts, toVenueParams(params))
	if err != nil {
		return nil, classifyRevert(fmt.Errorf("failed to submit intent creation: %v", err))
	}
	c.logger.InfoWithScope(logger.Venue, "Intent creation submitted: %s", tx.Hash().Hex())
	return tx, nil
}

// SubmitCancel submits a cancellation. Only the owner may cancel, and
// the venue rejects intents that are already terminal.
func (c *Client) SubmitCancel(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.hook.CancelIntent(opts, new(big.Int).SetUint64(id), recipient)
	if err != nil {
		return nil, classifyRevert(fmt.Errorf("failed to submit cancellation of intent %d: %v", id, err))
	}
	c.logger.InfoWithScope(logger.Venue, "Cancellation of intent %d submitted: %s", id, tx.Hash().Hex())
	return tx, nil
}

// SubmitRefund submits a refund claim for an intent.
func (c *Client) SubmitRefund(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	opts, err := c.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := c.hook.RefundIntent(opts, new(big.Int).SetUint64(id), recipient)
	if err != nil {
		return nil, classifyRevert(fmt.Errorf("failed to submit refund of intent %d: %v", id, err))
	}
	c.logger.InfoWithScope(logger.Venue, "Refund of intent %d submitted: %s", id, tx.Hash().Hex())
	return tx, nil
}

// WaitMined blocks until the transaction is mined or ctx is done. A
// mined-but-reverted transaction is reported as ErrRejected.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %v", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("transaction %s reverted: %w", tx.Hash().Hex(), ErrRejected)
	}
	return receipt, nil
}

// CreatedIDFromReceipt extracts the venue-assigned intent id from a
// confirmed creation receipt.
func (c *Client) CreatedIDFromReceipt(receipt *types.Receipt) (uint64, error) {
	for _, log := range receipt.Logs {
		if log.Address != c.hookAddr {
			continue
		}
		ev, err := c.hook.ParseIntentCreated(*log)
		if err != nil {
			continue
		}
		return ev.IntentId.Uint64(), nil
	}
	return 0, fmt.Errorf("no IntentCreated record in receipt %s", receipt.TxHash.Hex())
}

func toVenueParams(params models.CreateParams) contracts.SniperTypesCreateIntentParams {
	return contracts.SniperTypesCreateIntentParams{
		TokenIn:        params.TokenIn,
		TokenOut:       params.TokenOut,
		AmountIn:       params.AmountIn,
		TargetPrice:    params.TargetPrice,
		MaxSlippageBps: params.MaxSlippageBps,
		Expiry:         new(big.Int).SetUint64(params.Expiry),
		TargetTickHint: big.NewInt(int64(params.TargetTickHint)),
	}
}
