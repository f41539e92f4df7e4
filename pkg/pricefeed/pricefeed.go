// Package pricefeed polls the reference oracle for a guidance price.
// The value is presentation-only: lifecycle decisions never depend on
// it, so a stale or missing price degrades the UI, not correctness.
package pricefeed

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/metrics"
	"github.com/sniper-hq/sniperwatch/pkg/models"
)

// Source reads the latest round from the reference feed.
type Source interface {
	LatestRoundData(ctx context.Context) (*big.Int, time.Time, error)
}

// Snapshot is the last successfully observed price.
type Snapshot struct {
	Price     *big.Int
	UpdatedAt time.Time
	FetchedAt time.Time
}

// Feed polls the oracle on a fixed interval and serves the latest
// snapshot to readers.
type Feed struct {
	source   Source
	interval time.Duration
	logger   logger.Logger

	mu   sync.RWMutex
	last Snapshot
}

// New creates a feed polling source every interval.
func New(source Source, interval time.Duration, log logger.Logger) *Feed {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Feed{
		source:   source,
		interval: interval,
		logger:   log,
	}
}

// Run polls until ctx is cancelled. An immediate poll happens before
// the first tick so the session does not start with an empty price.
func (f *Feed) Run(ctx context.Context) {
	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

func (f *Feed) poll(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	price, updatedAt, err := f.source.LatestRoundData(callCtx)
	if err != nil {
		// Keep serving the previous snapshot.
		f.logger.ErrorWithScope(logger.Feed, "Price poll failed: %v", err)
		return
	}

	f.mu.Lock()
	f.last = Snapshot{Price: price, UpdatedAt: updatedAt, FetchedAt: time.Now()}
	f.mu.Unlock()

	priceFloat, _ := new(big.Float).SetInt(price).Float64()
	metrics.OraclePrice.Set(priceFloat)
	f.logger.DebugWithScope(logger.Feed, "Guidance price: $%s (answered %s)",
		models.FormatPrice(price), updatedAt.Format(time.RFC3339))
}

// Latest returns the most recent snapshot. Price is nil until the
// first successful poll.
func (f *Feed) Latest() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last
}
