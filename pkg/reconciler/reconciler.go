// Package reconciler keeps the replica store converged with the venue.
// It runs three loops: a chunked historical backfill, a live event
// subscription with reconnect, and a periodic direct-read resync of
// non-terminal intents. All three funnel through the normalizer, whose
// dedup boundary absorbs the overlap between them.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/sniper-hq/sniperwatch/pkg/circuitbreaker"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/normalizer"
	"github.com/sniper-hq/sniperwatch/pkg/store"
	"github.com/sniper-hq/sniperwatch/pkg/venue"
)

const (
	maxBackoff  = 2 * time.Minute
	baseBackoff = 10 * time.Second
)

// Venue is the slice of the venue client the reconciler needs.
type Venue interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	NextIntentID(ctx context.Context) (uint64, error)
	ReadCreatedRange(ctx context.Context, from, to uint64) ([]*contracts.SniperHookIntentCreated, error)
	ReadExecutedRange(ctx context.Context, from, to uint64) ([]*contracts.SniperHookIntentExecuted, error)
	WatchCreated(ctx context.Context, start uint64, sink chan<- *contracts.SniperHookIntentCreated) (event.Subscription, error)
	WatchExecuted(ctx context.Context, start uint64, sink chan<- *contracts.SniperHookIntentExecuted) (event.Subscription, error)
	ReadIntent(ctx context.Context, id uint64) (models.Intent, error)
}

// Options bound the historical scan and the resync cadence.
type Options struct {
	DeploymentBlock uint64
	LookbackBlocks  uint64
	ChunkSize       uint64
	ResyncEvery     time.Duration
}

// Reconciler drives the sync loops against a venue.
type Reconciler struct {
	venue   Venue
	norm    *normalizer.Normalizer
	store   *store.Store
	breaker *circuitbreaker.CircuitBreaker
	opts    Options
	logger  logger.Logger

	ready     atomic.Bool
	stale     atomic.Bool
	lastBlock atomic.Uint64

	// retryBase is overridable in tests to keep retries fast.
	retryBase time.Duration
}

// New creates a reconciler. The breaker may be nil-enabled (disabled)
// but must not be nil.
func New(v Venue, norm *normalizer.Normalizer, st *store.Store, breaker *circuitbreaker.CircuitBreaker, opts Options, log logger.Logger) *Reconciler {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Reconciler{
		venue:     v,
		norm:      norm,
		store:     st,
		breaker:   breaker,
		opts:      opts,
		logger:    log,
		retryBase: baseBackoff,
	}
}

// Ready reports whether the initial backfill has completed. Reads from
// the store before this point may be arbitrarily incomplete.
func (r *Reconciler) Ready() bool {
	return r.ready.Load()
}

// Stale reports whether the live feed is currently degraded. The store
// remains serveable while stale; it may simply lag the venue.
func (r *Reconciler) Stale() bool {
	return r.stale.Load()
}

// Run performs the backfill and then keeps the live subscription and
// the resync loop going until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	head, err := r.Backfill(ctx)
	if err != nil {
		return fmt.Errorf("initial backfill failed: %v", err)
	}
	r.ready.Store(true)
	r.lastBlock.Store(head)

	go r.resyncLoop(ctx)
	r.subscribeLoop(ctx)
	return ctx.Err()
}

// Backfill scans the historical window in bounded chunks and applies
// every record found. Returns the head block the scan ran against, so
// the live subscription can start there.
func (r *Reconciler) Backfill(ctx context.Context) (uint64, error) {
	started := time.Now()

	head, err := r.venue.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read chain head: %v", err)
	}

	from := r.opts.DeploymentBlock
	if r.opts.LookbackBlocks > 0 && head > r.opts.LookbackBlocks {
		if cutoff := head - r.opts.LookbackBlocks; cutoff > from {
			from = cutoff
		}
	}

	r.logger.InfoWithScope(logger.Sync, "Backfilling blocks %d to %d (chunk size %d)", from, head, r.opts.ChunkSize)

	for from <= head {
		to := from + r.opts.ChunkSize - 1
		if to > head {
			to = head
		}

		if err := r.backfillChunk(ctx, from, to); err != nil {
			return 0, err
		}
		metrics.BackfillChunks.Inc()
		from = to + 1
	}

	metrics.BackfillDuration.Observe(time.Since(started).Seconds())
	r.logger.NoticeWithScope(logger.Sync, "Backfill complete: %d intents known after %s",
		r.store.Len(), time.Since(started).Round(time.Millisecond))

	// Sanity check against the venue's id counter. The replica may know
	// fewer when the lookback window trimmed the scan.
	if next, err := r.venue.NextIntentID(ctx); err == nil {
		r.logger.InfoWithScope(logger.Sync, "Venue next intent id is %d, replica tracks %d within the window",
			next, r.store.Len())
	}
	return head, nil
}

// backfillChunk queries one [from, to] span, retrying transient
// failures with exponential backoff.
func (r *Reconciler) backfillChunk(ctx context.Context, from, to uint64) error {
	for attempt := 0; ; attempt++ {
		err := r.readChunk(ctx, from, to)
		if err == nil {
			r.breaker.RecordSuccess()
			return nil
		}
		if !isTransient(err) {
			return err
		}
		r.breaker.RecordFailure()

		delay := backoffDelay(r.retryBase, attempt)
		r.logger.ErrorWithScope(logger.Sync, "Chunk [%d, %d] failed (attempt %d), retrying in %s: %v",
			from, to, attempt+1, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (r *Reconciler) readChunk(ctx context.Context, from, to uint64) error {
	created, err := r.venue.ReadCreatedRange(ctx, from, to)
	if err != nil {
		return err
	}
	executed, err := r.venue.ReadExecutedRange(ctx, from, to)
	if err != nil {
		return err
	}

	for _, ev := range created {
		r.norm.ApplyCreated(ev)
	}
	for _, ev := range executed {
		r.norm.ApplyExecuted(ev)
	}
	return nil
}

// subscribeLoop keeps the live subscriptions alive, reconnecting with
// exponential backoff. While disconnected the replica is marked stale.
// A live watch does not replay history, so the span since the last
// processed block is refilled by range query before every subscribe;
// the stale flag clears only once that refill has succeeded and the
// subscriptions are up again.
func (r *Reconciler) subscribeLoop(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		if err := r.fillGap(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.breaker.RecordFailure()

			delay := backoffDelay(r.retryBase, attempt)
			attempt++
			r.logger.ErrorWithScope(logger.Sync, "Gap refill failed, retrying in %s: %v", delay, err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		err := r.subscribeOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		r.setStale(true)
		r.breaker.RecordFailure()
		metrics.Resubscribes.Inc()

		delay := backoffDelay(r.retryBase, attempt)
		attempt++
		r.logger.ErrorWithScope(logger.Sync, "Live subscription lost, reconnecting in %s: %v", delay, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// subscribeOnce runs both subscriptions until one of them errors or ctx
// is cancelled. Returns the subscription error.
func (r *Reconciler) subscribeOnce(ctx context.Context) error {
	start := r.lastBlock.Load()

	createdSink := make(chan *contracts.SniperHookIntentCreated, 32)
	executedSink := make(chan *contracts.SniperHookIntentExecuted, 32)

	createdSub, err := r.venue.WatchCreated(ctx, start, createdSink)
	if err != nil {
		return err
	}
	defer createdSub.Unsubscribe()

	executedSub, err := r.venue.WatchExecuted(ctx, start, executedSink)
	if err != nil {
		return err
	}
	defer executedSub.Unsubscribe()

	r.setStale(false)
	r.breaker.RecordSuccess()
	r.logger.InfoWithScope(logger.Sync, "Live subscription established from block %d", start)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-createdSink:
			r.bumpBlock(ev.Raw.BlockNumber)
			r.norm.ApplyCreated(ev)
		case ev := <-executedSink:
			r.bumpBlock(ev.Raw.BlockNumber)
			r.norm.ApplyExecuted(ev)
		case err := <-createdSub.Err():
			return err
		case err := <-executedSub.Err():
			return err
		}
	}
}

// fillGap scans from the last processed block to the current head.
// Transient chunk failures are retried inside backfillChunk; the
// normalizer drops whatever was already seen. Only a fully covered
// span advances lastBlock.
func (r *Reconciler) fillGap(ctx context.Context) error {
	head, err := r.venue.LatestBlockNumber(ctx)
	if err != nil {
		return err
	}

	from := r.lastBlock.Load()
	for from <= head {
		to := from + r.opts.ChunkSize - 1
		if to > head {
			to = head
		}
		if err := r.backfillChunk(ctx, from, to); err != nil {
			return err
		}
		from = to + 1
	}
	r.lastBlock.Store(head)
	return nil
}

// resyncLoop periodically re-reads every non-terminal intent directly
// from the venue. This catches cancellations, which emit no event, and
// any record the event path missed.
func (r *Reconciler) resyncLoop(ctx context.Context) {
	if r.opts.ResyncEvery <= 0 {
		return
	}

	ticker := time.NewTicker(r.opts.ResyncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Resync(ctx)
		}
	}
}

// Resync re-reads all non-terminal intents. Individual read failures
// are logged and skipped; the next cycle retries.
func (r *Reconciler) Resync(ctx context.Context) {
	if r.breaker.IsOpen() {
		r.logger.DebugWithScope(logger.Sync, "Skipping resync, circuit open")
		return
	}

	refreshed := 0
	for _, intent := range r.store.List() {
		if intent.Terminal() {
			continue
		}

		fresh, err := r.venue.ReadIntent(ctx, intent.ID)
		if err != nil {
			if errors.Is(err, venue.ErrNotFound) {
				// An id observed from an event the venue does not serve
				// yet. It will resolve once the read path catches up.
				continue
			}
			r.breaker.RecordFailure()
			r.logger.ErrorWithScope(logger.Sync, "Resync read of intent %d failed: %v", intent.ID, err)
			if r.breaker.IsOpen() {
				return
			}
			continue
		}
		r.breaker.RecordSuccess()

		if r.store.UpsertFromDirectRead(fresh) {
			refreshed++
		}
	}

	if refreshed > 0 {
		r.logger.InfoWithScope(logger.Sync, "Resync refreshed %d intents", refreshed)
	}
}

func (r *Reconciler) bumpBlock(block uint64) {
	for {
		cur := r.lastBlock.Load()
		if block <= cur || r.lastBlock.CompareAndSwap(cur, block) {
			return
		}
	}
}

func (r *Reconciler) setStale(stale bool) {
	r.stale.Store(stale)
	if stale {
		metrics.SubscriptionStale.Set(1)
	} else {
		metrics.SubscriptionStale.Set(0)
	}
}

// backoffDelay returns the retry delay for the given attempt count,
// doubling from base and capped at maxBackoff.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
