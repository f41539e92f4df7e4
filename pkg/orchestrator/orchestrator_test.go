package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/store"
	"github.com/sniper-hq/sniperwatch/pkg/venue"
)

var (
	ownerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	otherAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func dummyTx(nonce uint64) *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: nonce, To: &otherAddr, Value: big.NewInt(0), Gas: 21000, GasPrice: big.NewInt(1)})
}

// fakeVenue scripts the venue side of a write flow.
type fakeVenue struct {
	mu sync.Mutex

	readOnly  bool
	balance   *big.Int
	allowance *big.Int
	intents   map[uint64]models.Intent
	nextID    uint64

	approves  int
	creates   int
	cancels   int
	refunds   int
	submitErr error

	blockMined chan struct{} // when set, WaitMined blocks until closed
	mineErr    error
}

func newFakeVenue() *fakeVenue {
	return &fakeVenue{
		balance:   big.NewInt(1_000_000_000),
		allowance: big.NewInt(1_000_000_000),
		intents:   make(map[uint64]models.Intent),
		nextID:    7,
	}
}

func (f *fakeVenue) ReadOnly() bool        { return f.readOnly }
func (f *fakeVenue) Owner() common.Address { return ownerAddr }

func (f *fakeVenue) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeVenue) Allowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return f.allowance, nil
}

func (f *fakeVenue) SubmitApprove(ctx context.Context, amount *big.Int) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approves++
	f.allowance = amount
	return dummyTx(1), nil
}

func (f *fakeVenue) SubmitCreate(ctx context.Context, params models.CreateParams) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.creates++
	f.intents[f.nextID] = models.Intent{
		ID:          f.nextID,
		Owner:       ownerAddr,
		AmountIn:    params.AmountIn,
		TargetPrice: params.TargetPrice,
		Expiry:      params.Expiry,
	}
	return dummyTx(2), nil
}

func (f *fakeVenue) SubmitCancel(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.cancels++
	intent := f.intents[id]
	intent.Cancelled = true
	f.intents[id] = intent
	return dummyTx(3), nil
}

func (f *fakeVenue) SubmitRefund(ctx context.Context, id uint64, recipient common.Address) (*types.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds++
	return dummyTx(4), nil
}

func (f *fakeVenue) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if f.blockMined != nil {
		select {
		case <-f.blockMined:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.mineErr != nil {
		return nil, f.mineErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

func (f *fakeVenue) CreatedIDFromReceipt(receipt *types.Receipt) (uint64, error) {
	return f.nextID, nil
}

func (f *fakeVenue) ReadIntent(ctx context.Context, id uint64) (models.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent, ok := f.intents[id]
	if !ok {
		return models.Intent{}, venue.ErrNotFound
	}
	return intent, nil
}

func params() models.CreateParams {
	return models.CreateParams{
		TokenIn:        common.HexToAddress("0x03"),
		TokenOut:       common.HexToAddress("0x04"),
		AmountIn:       big.NewInt(100_000_000),
		TargetPrice:    big.NewInt(3_000_00000000),
		MaxSlippageBps: 50,
		Expiry:         2_000_000_000,
	}
}

func newTestOrchestrator(f *fakeVenue) (*Orchestrator, *store.Store, *activity.Log) {
	st := store.New(nil)
	feed := activity.NewLog(30)
	return New(f, st, feed, 5*time.Second, nil), st, feed
}

func TestCreateIntent(t *testing.T) {
	t.Run("happy path with sufficient allowance", func(t *testing.T) {
		f := newFakeVenue()
		o, st, _ := newTestOrchestrator(f)

		id, err := o.CreateIntent(context.Background(), params())
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
		assert.Equal(t, 0, f.approves, "no approval needed when allowance covers the amount")
		assert.Equal(t, 1, f.creates)

		// The store converged from the authoritative read, not the receipt.
		intent, ok := st.Get(7)
		require.True(t, ok)
		assert.Equal(t, ownerAddr, intent.Owner)
		assert.Empty(t, o.Pending(), "flow slot must be released")

		balance, allowance := o.Funds()
		assert.NotNil(t, balance)
		assert.NotNil(t, allowance)
	})

	t.Run("approval runs first when allowance is short", func(t *testing.T) {
		f := newFakeVenue()
		f.allowance = big.NewInt(0)
		o, _, feed := newTestOrchestrator(f)

		_, err := o.CreateIntent(context.Background(), params())
		require.NoError(t, err)
		assert.Equal(t, 1, f.approves)
		assert.Equal(t, 1, f.creates)

		var sawApproval bool
		for _, e := range feed.Entries() {
			if e.Severity == activity.SeveritySuccess && e.Message == "Approval confirmed for 100.00 USDC" {
				sawApproval = true
			}
		}
		assert.True(t, sawApproval)
	})

	t.Run("insufficient balance blocks the flow", func(t *testing.T) {
		f := newFakeVenue()
		f.balance = big.NewInt(1)
		o, _, _ := newTestOrchestrator(f)

		_, err := o.CreateIntent(context.Background(), params())
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, 0, f.creates)
	})

	t.Run("read-only session cannot create", func(t *testing.T) {
		f := newFakeVenue()
		f.readOnly = true
		o, _, _ := newTestOrchestrator(f)

		_, err := o.CreateIntent(context.Background(), params())
		assert.ErrorIs(t, err, venue.ErrReadOnly)
	})

	t.Run("rejected submission surfaces the error", func(t *testing.T) {
		f := newFakeVenue()
		f.submitErr = venue.ErrRejected
		o, _, _ := newTestOrchestrator(f)

		_, err := o.CreateIntent(context.Background(), params())
		assert.ErrorIs(t, err, venue.ErrRejected)
		assert.Empty(t, o.Pending())
	})

	t.Run("concurrent create is rejected as in flight", func(t *testing.T) {
		f := newFakeVenue()
		f.blockMined = make(chan struct{})
		o, _, _ := newTestOrchestrator(f)

		firstDone := make(chan error, 1)
		go func() {
			_, err := o.CreateIntent(context.Background(), params())
			firstDone <- err
		}()

		// Wait for the first flow to reach the mining stage.
		require.Eventually(t, func() bool {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.creates == 1
		}, 2*time.Second, 5*time.Millisecond)

		_, err := o.CreateIntent(context.Background(), params())
		assert.ErrorIs(t, err, ErrInFlight)

		close(f.blockMined)
		require.NoError(t, <-firstDone)
	})
}

func TestCancelIntent(t *testing.T) {
	t.Run("happy path converges through direct read", func(t *testing.T) {
		f := newFakeVenue()
		f.intents[5] = models.Intent{ID: 5, Owner: ownerAddr, AmountIn: big.NewInt(1), Expiry: 2_000_000_000}
		o, st, _ := newTestOrchestrator(f)
		st.UpsertFromDirectRead(f.intents[5])

		err := o.CancelIntent(context.Background(), 5, ownerAddr)
		require.NoError(t, err)
		assert.Equal(t, 1, f.cancels)

		intent, ok := st.Get(5)
		require.True(t, ok)
		assert.True(t, intent.Cancelled)
	})

	t.Run("locally terminal intent is rejected without a submission", func(t *testing.T) {
		f := newFakeVenue()
		o, st, _ := newTestOrchestrator(f)
		st.UpsertFromDirectRead(models.Intent{ID: 5, Owner: ownerAddr, Executed: true})

		err := o.CancelIntent(context.Background(), 5, ownerAddr)
		assert.ErrorIs(t, err, venue.ErrAlreadyTerminal)
		assert.Equal(t, 0, f.cancels)
	})

	t.Run("non-owner is rejected without a submission", func(t *testing.T) {
		f := newFakeVenue()
		o, st, _ := newTestOrchestrator(f)
		st.UpsertFromDirectRead(models.Intent{ID: 5, Owner: otherAddr, AmountIn: big.NewInt(1)})

		err := o.CancelIntent(context.Background(), 5, ownerAddr)
		assert.ErrorIs(t, err, venue.ErrNotOwner)
		assert.Equal(t, 0, f.cancels)
	})

	t.Run("venue race loss converges on the venue outcome", func(t *testing.T) {
		f := newFakeVenue()
		f.submitErr = venue.ErrAlreadyTerminal
		f.intents[5] = models.Intent{ID: 5, Owner: ownerAddr, Executed: true}
		o, st, _ := newTestOrchestrator(f)

		err := o.CancelIntent(context.Background(), 5, ownerAddr)
		assert.ErrorIs(t, err, venue.ErrAlreadyTerminal)

		// The losing cancel must not fabricate state; the executed
		// outcome arrives from the direct read.
		intent, ok := st.Get(5)
		require.True(t, ok)
		assert.True(t, intent.Executed)
		assert.False(t, intent.Cancelled)
	})

	t.Run("read-only session cannot cancel", func(t *testing.T) {
		f := newFakeVenue()
		f.readOnly = true
		o, _, _ := newTestOrchestrator(f)

		err := o.CancelIntent(context.Background(), 5, ownerAddr)
		assert.ErrorIs(t, err, venue.ErrReadOnly)
	})
}

func TestStuckTransaction(t *testing.T) {
	f := newFakeVenue()
	f.blockMined = make(chan struct{})
	defer close(f.blockMined)

	st := store.New(nil)
	o := New(f, st, activity.NewLog(30), 50*time.Millisecond, nil)

	_, err := o.CreateIntent(context.Background(), params())
	assert.ErrorIs(t, err, ErrStuck)

	// Nothing confirmed, so the replica must not contain the intent.
	_, ok := st.Get(7)
	assert.False(t, ok)
}

func TestRefundIntent(t *testing.T) {
	f := newFakeVenue()
	f.intents[5] = models.Intent{ID: 5, Owner: ownerAddr, Cancelled: true}
	o, _, _ := newTestOrchestrator(f)

	err := o.RefundIntent(context.Background(), 5, ownerAddr)
	require.NoError(t, err)
	assert.Equal(t, 1, f.refunds)
}

func TestTracker(t *testing.T) {
	tr := newTracker()
	key := flowKey{id: 1, action: ActionCancel}

	require.NoError(t, tr.begin(key))
	assert.ErrorIs(t, tr.begin(key), ErrInFlight)

	// A different action on the same intent is independent.
	require.NoError(t, tr.begin(flowKey{id: 1, action: ActionRefund}))

	tr.update(key, StateCancelling, "0xabc")
	snap := tr.snapshot()
	require.Len(t, snap, 2)

	tr.end(key)
	require.NoError(t, tr.begin(key))
}
