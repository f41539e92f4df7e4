package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	EventsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_events_normalized_total",
		Help: "The total number of lifecycle events applied to the replica store",
	}, []string{"kind"})

	DuplicateEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_duplicate_events_total",
		Help: "The total number of log records dropped by the normalizer dedup boundary",
	}, []string{"kind"})

	BackfillChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniperwatch_backfill_chunks_total",
		Help: "The total number of bounded range queries issued during backfill",
	})

	BackfillDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniperwatch_backfill_duration_seconds",
		Help:    "Time taken to complete the historical backfill phase",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // Start at 1s with 10 buckets doubling in size
	})

	Resubscribes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniperwatch_resubscribes_total",
		Help: "The total number of live subscription reconnect attempts",
	})

	SubscriptionStale = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sniperwatch_subscription_stale",
		Help: "Set to 1 when the live event feed is degraded and the replica may lag",
	})

	KnownIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sniperwatch_known_intents",
		Help: "The number of intents tracked by the replica store",
	})

	DirectReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniperwatch_direct_reads_total",
		Help: "The total number of authoritative intent reads from the venue",
	})

	TxSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_tx_submitted_total",
		Help: "The total number of venue write submissions by action",
	}, []string{"action"})

	TxConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_tx_confirmed_total",
		Help: "The total number of confirmed venue writes by action",
	}, []string{"action"})

	TxFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_tx_failed_total",
		Help: "The total number of failed venue writes by action and reason",
	}, []string{"action", "reason"})

	OraclePrice = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sniperwatch_oracle_price",
		Help: "Latest guidance price from the reference feed, oracle decimals",
	})

	RPCErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniperwatch_rpc_errors_total",
		Help: "Total number of venue RPC errors by operation",
	}, []string{"op"})
)
