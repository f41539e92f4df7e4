// Package health exposes the observation surface over HTTP: liveness,
// readiness, a JSON status summary, the activity feed and Prometheus
// metrics.
package health

import (
	"encoding/json"
	"log"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/orchestrator"
	"github.com/sniper-hq/sniperwatch/pkg/pricefeed"
	"github.com/sniper-hq/sniperwatch/pkg/status"
)

// SyncState reports the reconciler's convergence state.
type SyncState interface {
	Ready() bool
	Stale() bool
}

// Breaker reports and resets the venue circuit breaker.
type Breaker interface {
	State() string
	Reset()
}

// IntentSource serves replica snapshots.
type IntentSource interface {
	List() []models.Intent
	Len() int
	CountByStatus(now time.Time) map[models.Status]int
	LastEventSeq() models.Sequence
}

// FlowSource serves in-flight write flows and cached account funds.
type FlowSource interface {
	Pending() []orchestrator.PendingTx
	Funds() (balance, allowance *big.Int)
}

// PriceSource serves the latest guidance price.
type PriceSource interface {
	Latest() pricefeed.Snapshot
}

// Server represents the health and metrics HTTP server.
type Server struct {
	port          string
	sync          SyncState
	intents       IntentSource
	flows         FlowSource
	feed          *activity.Log
	price         PriceSource
	breaker       Breaker
	readOnly      bool
	owner         string
	startedAt     time.Time
	metricsAPIKey string
}

// NewServer creates the observation server.
func NewServer(port string, sync SyncState, intents IntentSource, flows FlowSource, feed *activity.Log, price PriceSource, breaker Breaker, readOnly bool, owner string) *Server {
	return &Server{
		port:          port,
		sync:          sync,
		intents:       intents,
		flows:         flows,
		feed:          feed,
		price:         price,
		breaker:       breaker,
		readOnly:      readOnly,
		owner:         owner,
		startedAt:     time.Now(),
		metricsAPIKey: os.Getenv("METRICS_API_KEY"),
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler builds the route table. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Ready only once the initial backfill has completed; before that
	// the replica may be arbitrarily incomplete.
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !s.sync.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Backfill in progress"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		counts := map[string]int{}
		for st, n := range s.intents.CountByStatus(time.Now()) {
			counts[st.String()] = n
		}

		body := map[string]interface{}{
			"ready":         s.sync.Ready(),
			"stale":         s.sync.Stale(),
			"circuit":       s.breaker.State(),
			"read_only":     s.readOnly,
			"known_intents": s.intents.Len(),
			"by_status":     counts,
			"pending_txs":   s.flows.Pending(),
			"uptime":        time.Since(s.startedAt).Round(time.Second).String(),
		}
		if s.owner != "" {
			body["owner"] = s.owner
		}
		if seq := s.intents.LastEventSeq(); seq.Block > 0 {
			body["last_event_block"] = seq.Block
		}
		if snap := s.price.Latest(); snap.Price != nil {
			body["price"] = models.FormatPrice(snap.Price)
			body["price_updated_at"] = snap.UpdatedAt
		}
		if balance, allowance := s.flows.Funds(); balance != nil || allowance != nil {
			funds := map[string]string{}
			if balance != nil {
				funds["balance"] = models.FormatAmount(balance)
			}
			if allowance != nil {
				funds["allowance"] = models.FormatAmount(allowance)
			}
			body["funds"] = funds
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("Error encoding status JSON: %v", err)
		}
	})

	mux.HandleFunc("/intents", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		type intentView struct {
			ID          uint64 `json:"id"`
			Owner       string `json:"owner"`
			AmountIn    string `json:"amount_in"`
			TargetPrice string `json:"target_price"`
			Expiry      uint64 `json:"expiry"`
			Status      string `json:"status"`
		}

		intents := s.intents.List()
		views := make([]intentView, 0, len(intents))
		for _, intent := range intents {
			views = append(views, intentView{
				ID:          intent.ID,
				Owner:       intent.Owner.Hex(),
				AmountIn:    models.FormatAmount(intent.AmountIn),
				TargetPrice: models.FormatPrice(intent.TargetPrice),
				Expiry:      intent.Expiry,
				Status:      status.Resolve(intent, now).String(),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			log.Printf("Error encoding intents JSON: %v", err)
		}
	})

	mux.HandleFunc("/activity", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.feed.Entries()); err != nil {
			log.Printf("Error encoding activity JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	mux.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.breaker.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Circuit breaker reset"))
	})

	// Expose Prometheus metrics with API key authentication
	mux.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	return mux
}

// Start starts the health check server.
func (s *Server) Start() {
	log.Printf("Starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, s.Handler()); err != nil {
		log.Printf("Health server error: %v", err)
	}
}
