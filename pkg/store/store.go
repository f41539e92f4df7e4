// Package store holds the in-memory replica of all observed intents.
// It is the only mutable shared resource in the core: the reconciler,
// the live subscription and any in-flight transaction flow all write
// through it, and the merge rules below keep per-intent state
// transitions monotonic no matter which task observes them first.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/status"
)

// entry wraps a replica record with its own lock so updates to the same
// id are linearized without locking the whole store.
type entry struct {
	mu     sync.Mutex
	intent models.Intent
	// seen distinguishes a freshly allocated entry from one that has
	// absorbed at least one observation.
	seen bool
}

// Store is the intent replica store. Entries are created on first
// observation and never removed while the session is active.
type Store struct {
	mu      sync.RWMutex
	entries map[uint64]*entry

	subMu       sync.Mutex
	subscribers []chan uint64

	seqMu   sync.Mutex
	lastSeq models.Sequence

	logger logger.Logger
}

// New creates an empty replica store.
func New(log logger.Logger) *Store {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Store{
		entries: make(map[uint64]*entry),
		logger:  log,
	}
}

func (s *Store) getOrCreate(id uint64) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}
	e = &entry{intent: models.Intent{ID: id}}
	s.entries[id] = e
	metrics.KnownIntents.Set(float64(len(s.entries)))
	return e
}

// UpsertFromEvent merges a normalized lifecycle event into the replica.
// An event only introduces or refines the fields it carries; it never
// downgrades a terminal flag. The merge rules are commutative, so
// arrival order does not matter. Returns true if the record changed.
func (s *Store) UpsertFromEvent(ev models.LifecycleEvent) bool {
	e := s.getOrCreate(ev.IntentID)

	e.mu.Lock()
	changed := false

	switch ev.Kind {
	case models.EventCreated:
		// Created carries the full immutable parameter set; fill it in
		// only if this entry has not absorbed them yet.
		if e.intent.AmountIn == nil {
			e.intent.Owner = ev.Owner
			e.intent.TokenIn = ev.TokenIn
			e.intent.TokenOut = ev.TokenOut
			e.intent.AmountIn = ev.AmountIn
			e.intent.TargetPrice = ev.TargetPrice
			e.intent.TargetTick = ev.TargetTick
			e.intent.Expiry = ev.Expiry
			e.intent.MaxSlippageBps = ev.MaxSlippageBps
			changed = true
		}
	case models.EventExecuted:
		if e.intent.Cancelled {
			// The venue never emits both outcomes; a conflicting event
			// loses to the terminal state already recorded.
			s.logger.Error("Dropping executed event for cancelled intent %d", ev.IntentID)
		} else if !e.intent.Executed {
			e.intent.Executed = true
			changed = true
		}
	}

	if !e.seen {
		e.seen = true
		changed = true
	}
	e.mu.Unlock()

	s.bumpSeq(ev.Seq)
	if changed {
		s.notify(ev.IntentID)
	}
	return changed
}

func (s *Store) bumpSeq(seq models.Sequence) {
	s.seqMu.Lock()
	if s.lastSeq.Less(seq) {
		s.lastSeq = seq
	}
	s.seqMu.Unlock()
}

// LastEventSeq returns the venue sequence of the newest lifecycle
// event absorbed so far. Zero until the first event arrives.
func (s *Store) LastEventSeq() models.Sequence {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return s.lastSeq
}

// UpsertFromDirectRead replaces the replica record with an
// authoritative venue read. The read wins on every field, except that a
// locally recorded terminal flag is never cleared: terminal states are
// monotonic and a stale read must not regress them.
func (s *Store) UpsertFromDirectRead(intent models.Intent) bool {
	e := s.getOrCreate(intent.ID)

	e.mu.Lock()
	merged := intent
	merged.Executed = intent.Executed || e.intent.Executed
	merged.Cancelled = intent.Cancelled || e.intent.Cancelled

	changed := !e.seen || !equal(e.intent, merged)
	e.intent = merged
	e.seen = true
	e.mu.Unlock()

	if changed {
		s.notify(intent.ID)
	}
	return changed
}

// Get returns a copy of the record for id.
func (s *Store) Get(id uint64) (models.Intent, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return models.Intent{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.seen {
		return models.Intent{}, false
	}
	return e.intent, true
}

// List returns all known intents ordered by id descending.
func (s *Store) List() []models.Intent {
	s.mu.RLock()
	intents := make([]models.Intent, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		if e.seen {
			intents = append(intents, e.intent)
		}
		e.mu.Unlock()
	}
	s.mu.RUnlock()

	sort.Slice(intents, func(i, j int) bool {
		return intents[i].ID > intents[j].ID
	})
	return intents
}

// Len returns the number of known intents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CountByStatus tallies the replica by lifecycle state at the given time.
func (s *Store) CountByStatus(now time.Time) map[models.Status]int {
	counts := make(map[models.Status]int)
	for _, intent := range s.List() {
		counts[status.Resolve(intent, now)]++
	}
	return counts
}

// Subscribe returns a channel of changed intent ids. Notifications are
// best-effort: when a consumer falls behind, the oldest undelivered id
// is dropped rather than blocking the writers. Consumers re-read the
// store on receipt, so a dropped id only delays convergence.
func (s *Store) Subscribe() <-chan uint64 {
	ch := make(chan uint64, 64)
	s.subMu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- id:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- id:
			default:
			}
		}
	}
}

func equal(a, b models.Intent) bool {
	if a.ID != b.ID || a.Owner != b.Owner || a.TokenIn != b.TokenIn || a.TokenOut != b.TokenOut {
		return false
	}
	if a.MaxSlippageBps != b.MaxSlippageBps || a.Expiry != b.Expiry || a.Nonce != b.Nonce {
		return false
	}
	if a.TargetTick != b.TargetTick || a.Executed != b.Executed || a.Cancelled != b.Cancelled || a.CreatedAt != b.CreatedAt {
		return false
	}
	if (a.AmountIn == nil) != (b.AmountIn == nil) || (a.AmountIn != nil && a.AmountIn.Cmp(b.AmountIn) != 0) {
		return false
	}
	if (a.TargetPrice == nil) != (b.TargetPrice == nil) || (a.TargetPrice != nil && a.TargetPrice.Cmp(b.TargetPrice) != 0) {
		return false
	}
	return true
}
