package health

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sniper-hq/sniperwatch/pkg/activity"
	"github.com/sniper-hq/sniperwatch/pkg/models"
	"github.com/sniper-hq/sniperwatch/pkg/orchestrator"
	"github.com/sniper-hq/sniperwatch/pkg/pricefeed"
	"github.com/sniper-hq/sniperwatch/pkg/store"
)

type fakeSync struct{ ready, stale bool }

func (f *fakeSync) Ready() bool { return f.ready }
func (f *fakeSync) Stale() bool { return f.stale }

type fakeBreaker struct{ resets int }

func (f *fakeBreaker) State() string { return "closed" }
func (f *fakeBreaker) Reset()        { f.resets++ }

type fakeFlows struct {
	balance   *big.Int
	allowance *big.Int
}

func (f *fakeFlows) Pending() []orchestrator.PendingTx    { return nil }
func (f *fakeFlows) Funds() (balance, allowance *big.Int) { return f.balance, f.allowance }

type fakePrice struct{ snap pricefeed.Snapshot }

func (f *fakePrice) Latest() pricefeed.Snapshot { return f.snap }

func newTestServer(sync *fakeSync, st *store.Store, breaker *fakeBreaker) *Server {
	return NewServer("0", sync, st, &fakeFlows{}, activity.NewLog(5), &fakePrice{}, breaker, true, "")
}

func TestEndpoints(t *testing.T) {
	st := store.New(nil)
	st.UpsertFromDirectRead(models.Intent{
		ID:          1,
		AmountIn:    big.NewInt(100_000_000),
		TargetPrice: big.NewInt(3_000_00000000),
		Expiry:      uint64(time.Now().Add(time.Hour).Unix()),
	})
	st.UpsertFromDirectRead(models.Intent{ID: 2, AmountIn: big.NewInt(1), Executed: true})
	st.UpsertFromEvent(models.LifecycleEvent{
		Kind:     models.EventExecuted,
		IntentID: 2,
		Seq:      models.Sequence{Block: 105, Index: 1},
	})

	sync := &fakeSync{ready: true}
	breaker := &fakeBreaker{}
	handler := newTestServer(sync, st, breaker).Handler()

	t.Run("health always OK", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ready reflects backfill completion", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		notReady := newTestServer(&fakeSync{}, st, breaker).Handler()
		rec = httptest.NewRecorder()
		notReady.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("status summarizes the replica", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["ready"])
		assert.Equal(t, false, body["stale"])
		assert.Equal(t, "closed", body["circuit"])
		assert.Equal(t, float64(2), body["known_intents"])
		assert.Equal(t, float64(105), body["last_event_block"])

		counts, ok := body["by_status"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), counts["Active"])
		assert.Equal(t, float64(1), counts["Executed"])
	})

	t.Run("intents lists resolved statuses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/intents", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var views []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
		require.Len(t, views, 2)
		assert.Equal(t, float64(2), views[0]["id"], "newest intent first")
		assert.Equal(t, "Executed", views[0]["status"])
		assert.Equal(t, "100.00", views[1]["amount_in"])
	})

	t.Run("circuit reset requires POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/circuit/reset", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/circuit/reset", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, breaker.resets)
	})
}

func TestMetricsAuth(t *testing.T) {
	st := store.New(nil)

	t.Run("open when no key configured", func(t *testing.T) {
		handler := newTestServer(&fakeSync{ready: true}, st, &fakeBreaker{}).Handler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer token enforced when configured", func(t *testing.T) {
		t.Setenv("METRICS_API_KEY", "sekret")
		handler := newTestServer(&fakeSync{ready: true}, st, &fakeBreaker{}).Handler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.Header.Set("Authorization", "Basic sekret")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.Header.Set("Authorization", "Bearer sekret")
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestActivityEndpoint(t *testing.T) {
	st := store.New(nil)
	feed := activity.NewLog(5)
	feed.Append(activity.SeverityInfo, "Intent #1 created")

	server := NewServer("0", &fakeSync{ready: true}, st, &fakeFlows{}, feed, &fakePrice{}, &fakeBreaker{}, true, "")

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/activity", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []activity.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Intent #1 created", entries[0].Message)
}
