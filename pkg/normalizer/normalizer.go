// Package normalizer converts raw venue log records into canonical
// lifecycle events and applies them to the replica store exactly once.
// Decoding happens here and nowhere else; downstream code only ever
// sees fully typed events.
package normalizer

import (
	"fmt"
	"sync"

	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/store"
)

// dedupKey identifies a logical event. Each intent is created exactly
// once and executed at most once, so (id, kind) is sufficient.
type dedupKey struct {
	id   uint64
	kind models.EventKind
}

// Normalizer is the single entry point for venue log records. The
// backfill and the live subscription may overlap in the ranges they
// cover; the dedup boundary here guarantees no event is applied twice.
type Normalizer struct {
	mu     sync.Mutex
	seen   map[dedupKey]struct{}
	store  *store.Store
	feed   *activity.Log
	logger logger.Logger
}

// New creates a normalizer feeding the given store and activity feed.
func New(st *store.Store, feed *activity.Log, log logger.Logger) *Normalizer {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Normalizer{
		seen:   make(map[dedupKey]struct{}),
		store:  st,
		feed:   feed,
		logger: log,
	}
}

// FromCreated decodes a raw IntentCreated record.
func FromCreated(raw *contracts.SniperHookIntentCreated) models.LifecycleEvent {
	return models.LifecycleEvent{
		Kind:     models.EventCreated,
		IntentID: raw.IntentId.Uint64(),
		Seq: models.Sequence{
			Block: raw.Raw.BlockNumber,
			Index: raw.Raw.Index,
		},
		Owner:          raw.User,
		TokenIn:        raw.TokenIn,
		TokenOut:       raw.TokenOut,
		AmountIn:       raw.AmountIn,
		TargetPrice:    raw.TargetPrice,
		TargetTick:     int32(raw.TargetTick.Int64()),
		Expiry:         raw.Expiry.Uint64(),
		MaxSlippageBps: raw.MaxSlippageBps,
	}
}

// FromExecuted decodes a raw IntentExecuted record.
func FromExecuted(raw *contracts.SniperHookIntentExecuted) models.LifecycleEvent {
	return models.LifecycleEvent{
		Kind:     models.EventExecuted,
		IntentID: raw.IntentId.Uint64(),
		Seq: models.Sequence{
			Block: raw.Raw.BlockNumber,
			Index: raw.Raw.Index,
		},
		Beneficiary: raw.Beneficiary,
		OraclePrice: raw.OraclePrice,
		AnsweredAt:  raw.AnsweredAt.Uint64(),
		FastPath:    raw.FastPath,
	}
}

// Apply pushes a decoded event into the store unless it was already
// observed. Returns true when the event was newly applied.
func (n *Normalizer) Apply(ev models.LifecycleEvent) bool {
	key := dedupKey{id: ev.IntentID, kind: ev.Kind}

	n.mu.Lock()
	if _, dup := n.seen[key]; dup {
		n.mu.Unlock()
		metrics.DuplicateEvents.WithLabelValues(ev.Kind.String()).Inc()
		return false
	}
	n.seen[key] = struct{}{}
	n.mu.Unlock()

	n.store.UpsertFromEvent(ev)
	metrics.EventsNormalized.WithLabelValues(ev.Kind.String()).Inc()
	n.record(ev)
	return true
}

// ApplyCreated decodes and applies a raw created record.
func (n *Normalizer) ApplyCreated(raw *contracts.SniperHookIntentCreated) bool {
	return n.Apply(FromCreated(raw))
}

// ApplyExecuted decodes and applies a raw executed record.
func (n *Normalizer) ApplyExecuted(raw *contracts.SniperHookIntentExecuted) bool {
	return n.Apply(FromExecuted(raw))
}

// record renders the event into the activity feed, once per logical event.
func (n *Normalizer) record(ev models.LifecycleEvent) {
	if n.feed == nil {
		return
	}
	switch ev.Kind {
	case models.EventCreated:
		msg := fmt.Sprintf("Intent #%d created: %s USDC @ $%s",
			ev.IntentID, models.FormatAmount(ev.AmountIn), models.FormatPrice(ev.TargetPrice))
		n.feed.Append(activity.SeverityInfo, msg)
		n.logger.InfoWithScope(logger.Sync, "%s", msg)
	case models.EventExecuted:
		path := "standard"
		if ev.FastPath {
			path = "fast"
		}
		msg := fmt.Sprintf("Intent #%d EXECUTED at $%s (%s path)",
			ev.IntentID, models.FormatPrice(ev.OraclePrice), path)
		n.feed.Append(activity.SeveritySuccess, msg)
		n.logger.NoticeWithScope(logger.Sync, "%s", msg)
	}
}
