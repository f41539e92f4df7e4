// Package watcher assembles the watch session: venue client, replica
// store, reconciler, price feed, orchestrator and the observation
// server, wired together and run until shutdown.
package watcher

import (
	"context"

	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/circuitbreaker"
	"github.com/sniper-hq/sniperwatch/pkg/config"
	"github.com/sniper-hq/sniperwatch/pkg/health"
	"github.com/sniper-hq/sniperwatch/pkg/logger"
	"github.com/sniper-hq/sniperwatch/pkg/normalizer"
	"github.com/sniper-hq/sniperwatch/pkg/orchestrator"
	"github.com/sniper-hq/sniperwatch/pkg/pricefeed"
	"github.com/sniper-hq/sniperwatch/pkg/reconciler"
	"github.com/sniper-hq/sniperwatch/pkg/store"
	"github.com/sniper-hq/sniperwatch/pkg/venue"
)

// Service is a fully wired watch session.
type Service struct {
	cfg    *config.Config
	logger logger.Logger

	Venue        *venue.Client
	Store        *store.Store
	Feed         *activity.Log
	Reconciler   *reconciler.Reconciler
	Orchestrator *orchestrator.Orchestrator
	Prices       *pricefeed.Feed
	Health       *health.Server
	Breaker      *circuitbreaker.CircuitBreaker
}

// NewService connects to the venue and wires every component.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	client, err := venue.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	breaker := circuitbreaker.NewCircuitBreaker(
		cfg.CircuitBreaker.Enabled,
		cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration,
		cfg.CircuitBreaker.ResetTimeout,
		log,
	)

	st := store.New(log)
	feed := activity.NewLog(cfg.ActivityCapacity)
	norm := normalizer.New(st, feed, log)

	rec := reconciler.New(client, norm, st, breaker, reconciler.Options{
		DeploymentBlock: cfg.DeploymentBlock,
		LookbackBlocks:  cfg.LookbackBlocks,
		ChunkSize:       cfg.BackfillChunk,
		ResyncEvery:     cfg.ResyncEvery,
	}, log)

	orch := orchestrator.New(client, st, feed, cfg.TxTimeout, log)
	prices := pricefeed.New(client, cfg.PricePollEvery, log)

	owner := ""
	if !client.ReadOnly() {
		owner = client.Owner().Hex()
	}
	healthServer := health.NewServer(cfg.MetricsPort, rec, st, orch, feed, prices, breaker, client.ReadOnly(), owner)

	return &Service{
		cfg:          cfg,
		logger:       log,
		Venue:        client,
		Store:        st,
		Feed:         feed,
		Reconciler:   rec,
		Orchestrator: orch,
		Prices:       prices,
		Health:       healthServer,
		Breaker:      breaker,
	}, nil
}

// Start runs the session until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.Venue.ReadOnly() {
		s.logger.Notice("No private key configured, running in observe-only mode")
	} else {
		s.logger.Info("Write account: %s", s.Venue.Owner().Hex())
	}

	go s.Health.Start()
	go s.Prices.Run(ctx)

	if err := s.Reconciler.Run(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("Reconciler stopped: %v", err)
		return
	}
	s.logger.Notice("Watch session stopped")
}
