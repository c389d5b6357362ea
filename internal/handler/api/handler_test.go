package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"RetailPulse/internal/domain/models"
	repo "RetailPulse/internal/repository"
	icache "RetailPulse/internal/service/cache"
	"RetailPulse/internal/services/forecast"
	"RetailPulse/internal/services/signals"
	"RetailPulse/internal/usecase"
	applogger "RetailPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type testEnv struct {
	echo       *echo.Echo
	handler    *Handler
	history    *repo.MemoryHistoryStore
	perishable *repo.MemoryPerishableStore
	feed       *signals.SignalFeed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	history := repo.NewMemoryHistoryStore()
	feed := signals.NewSignalFeed(0)

	engine := usecase.NewForecastEngine(usecase.EngineConfig{}, history,
		forecast.NewSeasonalTrendForecaster(nil), nil, nil, nil, nil)
	batch := usecase.NewBatchForecaster(engine, 4, nil)

	thresholdStore := repo.NewMemoryThresholdStore(nil, 0)
	calc := usecase.NewThresholdCalculator(history, thresholdStore, nil, nil)

	perishable := repo.NewMemoryPerishableStore()
	policy := usecase.NewMarkdownPolicy(perishable, usecase.DefaultMarkdownCurve, nil, nil)

	h := NewHandler(l, engine, batch, calc, policy, feed, nil)
	h.SetCache(icache.NewTTLCache())

	e := echo.New()
	h.RegisterRoutes(e)

	return &testEnv{echo: e, handler: h, history: history, perishable: perishable, feed: feed}
}

func (env *testEnv) seedHistory(productID string, demand float64, days int) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.TimeSeriesPoint, days)
	for i := range pts {
		pts[i] = models.TimeSeriesPoint{Date: start.AddDate(0, 0, i), Demand: demand}
	}
	env.history.Load(productID, pts)
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestForecastEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedHistory("p1", 100, 60)

	rec := env.do(http.MethodGet, "/api/v1/forecast/p1?store_id=main&horizon=month", "")
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", resp.Status, rec.Body.String())
	}

	var res models.ForecastResult
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.ProductID != "p1" || res.FinalForecast != 100 {
		t.Fatalf("result = %+v, want p1 with final 100", res)
	}
	if res.Interval.Lower > res.FinalForecast || res.Interval.Upper < res.FinalForecast {
		t.Fatal("interval must contain the final forecast")
	}
}

func TestForecastEndpointJSONBody(t *testing.T) {
	env := newTestEnv(t)
	env.seedHistory("p1", 100, 60)

	rec := env.do(http.MethodPost, "/api/v1/forecast",
		`{"product_id":"p1","store_id":"main","horizon":"week"}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", resp.Status, rec.Body.String())
	}
	var res models.ForecastResult
	if err := json.Unmarshal(resp.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Horizon != "week" {
		t.Fatalf("horizon = %q, want week", res.Horizon)
	}
}

func TestForecastEndpointUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/v1/forecast/ghost", "")
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (%s)", resp.Status, rec.Body.String())
	}
}

func TestForecastEndpointInvalidHorizon(t *testing.T) {
	env := newTestEnv(t)
	env.seedHistory("p1", 100, 60)

	rec := env.do(http.MethodGet, "/api/v1/forecast/p1?horizon=decade", "")
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", resp.Status, rec.Body.String())
	}
}

func TestBatchForecastEndpointPartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedHistory("p1", 50, 60)

	rec := env.do(http.MethodPost, "/api/v1/forecast/batch",
		`{"product_ids":["p1","ghost"],"store_id":"main","horizon":"week"}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", resp.Status, rec.Body.String())
	}

	var out models.BatchForecast
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(out.Results) != 1 || len(out.Errors) != 1 {
		t.Fatalf("batch = %d results %d errors, want 1 and 1", len(out.Results), len(out.Errors))
	}
}

func TestThresholdRecalcAndOverrideEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedHistory("p1", 10, 90)

	rec := env.do(http.MethodPost, "/api/v1/thresholds/recalculate",
		`{"product_id":"p1","store_id":"main","lead_time_days":7}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("recalc status = %d (%s)", resp.Status, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/api/v1/thresholds/p1?store_id=main", "")
	resp = decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("list status = %d (%s)", resp.Status, rec.Body.String())
	}
	var states []models.ThresholdState
	if err := json.Unmarshal(resp.Data, &states); err != nil {
		t.Fatalf("decode states: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("states = %d, want 3", len(states))
	}

	rec = env.do(http.MethodPut, "/api/v1/thresholds/p1/override",
		`{"store_id":"main","threshold_type":"reorder_point","value":500,"reason":"holiday buildup"}`)
	resp = decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("override status = %d (%s)", resp.Status, rec.Body.String())
	}
	var st models.ThresholdState
	if err := json.Unmarshal(resp.Data, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.CurrentValue != 500 || st.Reason != "manual override: holiday buildup" {
		t.Fatalf("override state = %+v", st)
	}
}

func TestThresholdOverrideRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPut, "/api/v1/thresholds/p1/override",
		`{"store_id":"main","threshold_type":"reorder_point","value":500}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", resp.Status, rec.Body.String())
	}
}

func TestMarkdownTriggerEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.perishable.Put(context.Background(), models.PerishableState{
		ProductID: "milk", StoreID: "main", CurrentQuantity: 5, DaysUntilExpiry: 2,
	})

	rec := env.do(http.MethodPost, "/api/v1/markdowns/trigger",
		`{"product_id":"milk","store_id":"main"}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.Status, rec.Body.String())
	}
	var d models.MarkdownDecision
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if !d.Eligible || d.Percentage != 0.5 {
		t.Fatalf("decision = %+v, want eligible at 0.5", d)
	}
}

func TestMarkdownTriggerUnknownPerishable(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/v1/markdowns/trigger",
		`{"product_id":"ghost","store_id":"main"}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (%s)", resp.Status, rec.Body.String())
	}
}

func TestSignalIngestEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/signals/social",
		`{"product_id":"p1","sentiment":0.4,"trending":0.7,"mentions":300}`)
	if resp := decodeEnvelope(t, rec); resp.Status != http.StatusOK {
		t.Fatalf("social status = %d (%s)", resp.Status, rec.Body.String())
	}
	r, ok, err := env.feed.Social(context.Background(), "p1")
	if err != nil || !ok {
		t.Fatalf("social reading not recorded: ok=%v err=%v", ok, err)
	}
	if r.Sentiment != 0.4 || r.Mentions != 300 {
		t.Fatalf("reading = %+v", r)
	}

	rec = env.do(http.MethodPost, "/api/v1/signals/weather",
		`{"store_id":"main","temperature":75,"humidity":40,"precipitation":0}`)
	if resp := decodeEnvelope(t, rec); resp.Status != http.StatusOK {
		t.Fatalf("weather status = %d (%s)", resp.Status, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/api/v1/signals/events",
		`{"product_id":"p1","count":2,"impact":0.2}`)
	if resp := decodeEnvelope(t, rec); resp.Status != http.StatusOK {
		t.Fatalf("events status = %d (%s)", resp.Status, rec.Body.String())
	}
}

func TestSignalIngestRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/api/v1/signals/social",
		`{"product_id":"p1","sentiment":5}`)
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", resp.Status, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", "")
	resp := decodeEnvelope(t, rec)
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d (%s)", resp.Status, rec.Body.String())
	}
}
