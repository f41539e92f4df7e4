package venue

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sniper-hq/sniperwatch/pkg/contracts"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
)

// ReadCreatedRange fetches IntentCreated records for [from, to], both
// bounds inclusive. The caller is responsible for keeping the span
// within the venue's query-size limits.
func (c *Client) ReadCreatedRange(ctx context.Context, from, to uint64) ([]*contracts.SniperHookIntentCreated, error) {
	opts := &bind.FilterOpts{Start: from, End: &to, Context: ctx}
	it, err := c.hook.FilterIntentCreated(opts, nil, nil, nil)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("filterCreated").Inc()
		return nil, fmt.Errorf("failed to query created events [%d, %d]: %v", from, to, err)
	}
	defer it.Close()

	var events []*contracts.SniperHookIntentCreated
	for it.Next() {
		events = append(events, it.Event)
	}
	if err := it.Error(); err != nil {
		metrics.RPCErrors.WithLabelValues("filterCreated").Inc()
		return nil, fmt.Errorf("failed to iterate created events [%d, %d]: %v", from, to, err)
	}
	return events, nil
}

// ReadExecutedRange fetches IntentExecuted records for [from, to].
func (c *Client) ReadExecutedRange(ctx context.Context, from, to uint64) ([]*contracts.SniperHookIntentExecuted, error) {
	opts := &bind.FilterOpts{Start: from, End: &to, Context: ctx}
	it, err := c.hook.FilterIntentExecuted(opts, nil, nil)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("filterExecuted").Inc()
		return nil, fmt.Errorf("failed to query executed events [%d, %d]: %v", from, to, err)
	}
	defer it.Close()

	var events []*contracts.SniperHookIntentExecuted
	for it.Next() {
		events = append(events, it.Event)
	}
	if err := it.Error(); err != nil {
		metrics.RPCErrors.WithLabelValues("filterExecuted").Inc()
		return nil, fmt.Errorf("failed to iterate executed events [%d, %d]: %v", from, to, err)
	}
	return events, nil
}

// WatchCreated opens a live subscription for IntentCreated records,
// starting at the given block. The subscription is cancelled via ctx or
// by unsubscribing; it does not reconnect by itself.
func (c *Client) WatchCreated(ctx context.Context, start uint64, sink chan<- *contracts.SniperHookIntentCreated) (event.Subscription, error) {
	opts := &bind.WatchOpts{Start: &start, Context: ctx}
	sub, err := c.hookWS.WatchIntentCreated(opts, sink, nil, nil, nil)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("watchCreated").Inc()
		return nil, fmt.Errorf("failed to subscribe to created events: %v", err)
	}
	return sub, nil
}

// WatchExecuted opens a live subscription for IntentExecuted records.
func (c *Client) WatchExecuted(ctx context.Context, start uint64, sink chan<- *contracts.SniperHookIntentExecuted) (event.Subscription, error) {
	opts := &bind.WatchOpts{Start: &start, Context: ctx}
	sub, err := c.hookWS.WatchIntentExecuted(opts, sink, nil, nil)
	if err != nil {
		metrics.RPCErrors.WithLabelValues("watchExecuted").Inc()
		return nil, fmt.Errorf("failed to subscribe to executed events: %v", err)
	}
	return sub, nil
}
