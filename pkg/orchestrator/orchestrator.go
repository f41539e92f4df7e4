// Package orchestrator drives the venue write flows: source-asset
// approval, intent creation, cancellation and refund. Each flow is a
// small state machine whose terminal states come only from confirmed
// venue observations. Nothing here retries a failed submission; a
// rejection is surfaced and the caller decides.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/status"
	"github.com/sniper-hq/sniperwatch/pkg/store"
	"github.com/sniper-hq/sniperwatch/pkg/venue"
)

// Venue is the slice of the venue client the orchestrator needs.
type Venue interface {
	ReadOnly() bool
	Owner() common.Address
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner common.Address) (*big.Int, error)
	SubmitApprove(ctx context.Context, amount *big.Int) (*types.Transaction, error)
	SubmitCreate(ctx context.Context, params models.CreateParams) (*types.Transaction, error)
	SubmitCancel(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error)
	SubmitRefund(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	CreatedIDFromReceipt(receipt *types.Receipt) (uint64, error)
	ReadIntent(ctx context.Context, id uint64) (models.Intent, error)
}

// Orchestrator runs write flows against the venue and folds confirmed
// outcomes back into the replica store.
type Orchestrator struct {
	venue     Venue
	store     *store.Store
	feed      *activity.Log
	logger    logger.Logger
	txTimeout time.Duration
	flows     *tracker

	fundsMu   sync.RWMutex
	balance   *big.Int
	allowance *big.Int
}

// New creates an orchestrator. txTimeout bounds how long a flow waits
// for a submission to mine before declaring it stuck.
func New(v Venue, st *store.Store, feed *activity.Log, txTimeout time.Duration, log logger.Logger) *Orchestrator {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Orchestrator{
		venue:     v,
		store:     st,
		feed:      feed,
		logger:    log,
		txTimeout: txTimeout,
		flows:     newTracker(),
	}
}

// Pending returns a snapshot of all in-flight write flows.
func (o *Orchestrator) Pending() []PendingTx {
	return o.flows.snapshot()
}

// Funds returns the last observed source-asset balance and venue
// allowance of the signing account. Nil until a create flow has read
// them.
func (o *Orchestrator) Funds() (balance, allowance *big.Int) {
	o.fundsMu.RLock()
	defer o.fundsMu.RUnlock()
	return o.balance, o.allowance
}

func (o *Orchestrator) setFunds(balance, allowance *big.Int) {
	o.fundsMu.Lock()
	defer o.fundsMu.Unlock()
	if balance != nil {
		o.balance = balance
	}
	if allowance != nil {
		o.allowance = allowance
	}
}

// refreshFunds re-reads balance and allowance after a confirmed write.
func (o *Orchestrator) refreshFunds(ctx context.Context) {
	owner := o.venue.Owner()
	balance, err := o.venue.BalanceOf(ctx, owner)
	if err != nil {
		o.logger.DebugWithScope(logger.Tx, "Balance refresh failed: %v", err)
		balance = nil
	}
	allowance, err := o.venue.Allowance(ctx, owner)
	if err != nil {
		o.logger.DebugWithScope(logger.Tx, "Allowance refresh failed: %v", err)
		allowance = nil
	}
	o.setFunds(balance, allowance)
}

// CreateIntent runs the full creation flow: balance check, allowance
// check, approval when needed, then the creation itself. Returns the
// venue-assigned intent id on success.
func (o *Orchestrator) CreateIntent(ctx context.Context, params models.CreateParams) (uint64, error) {
	if o.venue.ReadOnly() {
		return 0, venue.ErrReadOnly
	}

	key := flowKey{action: ActionCreate}
	if err := o.flows.begin(key); err != nil {
		return 0, err
	}
	defer o.flows.end(key)

	owner := o.venue.Owner()

	o.flows.update(key, StateCheckingAllowance, "")
	balance, err := o.venue.BalanceOf(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to check balance: %v", err)
	}
	if balance.Cmp(params.AmountIn) < 0 {
		o.append(activity.SeverityDanger, "Create blocked: balance %s USDC below intent amount %s",
			models.FormatAmount(balance), models.FormatAmount(params.AmountIn))
		return 0, ErrInsufficientBalance
	}

	allowance, err := o.venue.Allowance(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to check allowance: %v", err)
	}
	o.setFunds(balance, allowance)

	if allowance.Cmp(params.AmountIn) < 0 {
		o.flows.update(key, StateNeedsApproval, "")
		if err := o.approve(ctx, key, params.AmountIn); err != nil {
			return 0, err
		}
	}

	o.flows.update(key, StateCreating, "")
	tx, err := o.venue.SubmitCreate(ctx, params)
	if err != nil {
		metrics.TxFailed.WithLabelValues(string(ActionCreate), "submit").Inc()
		o.flows.update(key, StateRejected, "")
		o.append(activity.SeverityDanger, "Intent creation rejected: %v", err)
		return 0, err
	}
	metrics.TxSubmitted.WithLabelValues(string(ActionCreate)).Inc()
	o.flows.update(key, StateCreating, tx.Hash().Hex())
	o.append(activity.SeverityInfo, "Intent creation submitted: %s", tx.Hash().Hex())

	receipt, err := o.waitMined(ctx, key, ActionCreate, tx)
	if err != nil {
		return 0, err
	}

	id, err := o.venue.CreatedIDFromReceipt(receipt)
	if err != nil {
		return 0, fmt.Errorf("creation confirmed but id not recoverable: %v", err)
	}
	metrics.TxConfirmed.WithLabelValues(string(ActionCreate)).Inc()
	o.flows.update(key, StateCreated, "")

	o.refresh(ctx, id)
	o.refreshFunds(ctx)
	o.append(activity.SeveritySuccess, "Intent #%d confirmed: %s USDC @ $%s",
		id, models.FormatAmount(params.AmountIn), models.FormatPrice(params.TargetPrice))
	o.logger.NoticeWithScope(logger.Tx, "Intent %d created in tx %s", id, tx.Hash().Hex())
	return id, nil
}

// CancelIntent cancels the intent, sending escrowed funds to recipient.
// Local guards reject obvious mistakes, but the venue remains the
// authority: a race it rejects is reported as its classified error.
func (o *Orchestrator) CancelIntent(ctx context.Context, id uint64, recipient common.Address) error {
	if o.venue.ReadOnly() {
		return venue.ErrReadOnly
	}

	if intent, ok := o.store.Get(id); ok {
		if !status.CanCancel(intent, time.Now()) {
			return venue.ErrAlreadyTerminal
		}
		if intent.Owner != o.venue.Owner() {
			return venue.ErrNotOwner
		}
	}

	key := flowKey{id: id, action: ActionCancel}
	if err := o.flows.begin(key); err != nil {
		return err
	}
	defer o.flows.end(key)

	o.flows.update(key, StateCancelling, "")
	tx, err := o.venue.SubmitCancel(ctx, id, recipient)
	if err != nil {
		metrics.TxFailed.WithLabelValues(string(ActionCancel), "submit").Inc()
		if errors.Is(err, venue.ErrAlreadyTerminal) {
			// Lost a race to execution or an earlier cancel; converge on
			// whatever the venue recorded.
			o.refresh(ctx, id)
		}
		o.append(activity.SeverityDanger, "Cancellation of intent #%d rejected: %v", id, err)
		return err
	}
	metrics.TxSubmitted.WithLabelValues(string(ActionCancel)).Inc()
	o.flows.update(key, StateCancelling, tx.Hash().Hex())
	o.append(activity.SeverityInfo, "Cancellation of intent #%d submitted: %s", id, tx.Hash().Hex())

	if _, err := o.waitMined(ctx, key, ActionCancel, tx); err != nil {
		if errors.Is(err, venue.ErrRejected) {
			o.refresh(ctx, id)
		}
		return err
	}
	metrics.TxConfirmed.WithLabelValues(string(ActionCancel)).Inc()
	o.flows.update(key, StateCancelled, "")

	o.refresh(ctx, id)
	o.append(activity.SeverityWarning, "Intent #%d cancelled", id)
	o.logger.NoticeWithScope(logger.Tx, "Intent %d cancelled in tx %s", id, tx.Hash().Hex())
	return nil
}

// RefundIntent claims the refund for an expired intent.
func (o *Orchestrator) RefundIntent(ctx context.Context, id uint64, recipient common.Address) error {
	if o.venue.ReadOnly() {
		return venue.ErrReadOnly
	}

	key := flowKey{id: id, action: ActionRefund}
	if err := o.flows.begin(key); err != nil {
		return err
	}
	defer o.flows.end(key)

	o.flows.update(key, StateRefunding, "")
	tx, err := o.venue.SubmitRefund(ctx, id, recipient)
	if err != nil {
		metrics.TxFailed.WithLabelValues(string(ActionRefund), "submit").Inc()
		o.append(activity.SeverityDanger, "Refund of intent #%d rejected: %v", id, err)
		return err
	}
	metrics.TxSubmitted.WithLabelValues(string(ActionRefund)).Inc()
	o.flows.update(key, StateRefunding, tx.Hash().Hex())

	if _, err := o.waitMined(ctx, key, ActionRefund, tx); err != nil {
		return err
	}
	metrics.TxConfirmed.WithLabelValues(string(ActionRefund)).Inc()
	o.flows.update(key, StateRefunded, "")

	o.refresh(ctx, id)
	o.append(activity.SeveritySuccess, "Refund of intent #%d confirmed", id)
	return nil
}

// approve runs the allowance sub-flow inside a creation.
func (o *Orchestrator) approve(ctx context.Context, key flowKey, amount *big.Int) error {
	tx, err := o.venue.SubmitApprove(ctx, amount)
	if err != nil {
		metrics.TxFailed.WithLabelValues(string(ActionApprove), "submit").Inc()
		o.append(activity.SeverityDanger, "Approval rejected: %v", err)
		return err
	}
	metrics.TxSubmitted.WithLabelValues(string(ActionApprove)).Inc()
	o.flows.update(key, StateApproving, tx.Hash().Hex())
	o.append(activity.SeverityInfo, "Approval submitted for %s USDC", models.FormatAmount(amount))

	if _, err := o.waitMined(ctx, key, ActionApprove, tx); err != nil {
		return err
	}
	metrics.TxConfirmed.WithLabelValues(string(ActionApprove)).Inc()
	o.flows.update(key, StateAllowanceConfirmed, "")
	o.append(activity.SeveritySuccess, "Approval confirmed for %s USDC", models.FormatAmount(amount))
	return nil
}

// waitMined waits for confirmation within the flow timeout. A timeout
// yields ErrStuck; the transaction may still land, and the resync loop
// will fold it in if it does.
func (o *Orchestrator) waitMined(ctx context.Context, key flowKey, action Action, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, o.txTimeout)
	defer cancel()

	receipt, err := o.venue.WaitMined(waitCtx, tx)
	if err == nil {
		return receipt, nil
	}

	if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		metrics.TxFailed.WithLabelValues(string(action), "stuck").Inc()
		o.flows.update(key, StateStuck, "")
		o.append(activity.SeverityDanger, "Transaction %s stuck: not mined within %s", tx.Hash().Hex(), o.txTimeout)
		o.logger.ErrorWithScope(logger.Tx, "Transaction %s (%s) stuck after %s", tx.Hash().Hex(), action, o.txTimeout)
		return nil, ErrStuck
	}

	metrics.TxFailed.WithLabelValues(string(action), "rejected").Inc()
	o.flows.update(key, StateRejected, "")
	o.append(activity.SeverityDanger, "Transaction %s failed: %v", tx.Hash().Hex(), err)
	return nil, err
}

// refresh folds the venue's authoritative record into the replica.
// Confirmation receipts alone never mutate the store.
func (o *Orchestrator) refresh(ctx context.Context, id uint64) {
	intent, err := o.venue.ReadIntent(ctx, id)
	if err != nil {
		o.logger.ErrorWithScope(logger.Tx, "Post-confirmation read of intent %d failed: %v", id, err)
		return
	}
	o.store.UpsertFromDirectRead(intent)
}

func (o *Orchestrator) append(severity activity.Severity, format string, args ...interface{}) {
	if o.feed != nil {
		o.feed.Append(severity, fmt.Sprintf(format, args...))
	}
}
