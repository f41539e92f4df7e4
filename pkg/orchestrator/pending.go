package orchestrator

import (
	"sync"
	"time"
)

// flowKey identifies one in-flight write flow. Creation flows share a
// single key because the intent id does not exist until confirmation.
type flowKey struct {
	id     uint64
	action Action
}

// PendingTx describes a submission awaiting confirmation.
type PendingTx struct {
	IntentID    uint64    `json:"intent_id"`
	Action      Action    `json:"action"`
	TxHash      string    `json:"tx_hash"`
	State       State     `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// tracker serializes flows per (intent, action) and keeps the pending
// set observable for status reporting.
type tracker struct {
	mu    sync.Mutex
	flows map[flowKey]*PendingTx
}

func newTracker() *tracker {
	return &tracker{flows: make(map[flowKey]*PendingTx)}
}

// begin claims the flow slot. Returns ErrInFlight when a flow for the
// same key is already running.
func (t *tracker) begin(key flowKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.flows[key]; busy {
		return ErrInFlight
	}
	t.flows[key] = &PendingTx{
		IntentID:    key.id,
		Action:      key.action,
		State:       StateIdle,
		SubmittedAt: time.Now(),
	}
	return nil
}

// update records the flow's current state and, once known, its hash.
func (t *tracker) update(key flowKey, state State, txHash string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.flows[key]; ok {
		p.State = state
		if txHash != "" {
			p.TxHash = txHash
		}
	}
}

// end releases the flow slot.
func (t *tracker) end(key flowKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.flows, key)
}

// snapshot returns a copy of all in-flight flows.
func (t *tracker) snapshot() []PendingTx {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PendingTx, 0, len(t.flows))
	for _, p := range t.flows {
		out = append(out, *p)
	}
	return out
}
