package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ctrmdash/internal/api"
	"ctrmdash/internal/coordinator"
	"ctrmdash/internal/memorystore"
	"ctrmdash/internal/metrics"
	"ctrmdash/internal/render"
	"ctrmdash/internal/seriesgen"
	"ctrmdash/internal/stream"
	"ctrmdash/internal/views"
	"ctrmdash/pkg/storage/postgres"
)

type fakeHistory struct {
	benchmark, series string
	from, to          time.Time
	records           []postgres.PriceRecord
}

func (f *fakeHistory) GetPrices(_ context.Context, benchmark, series string, from, to time.Time) ([]postgres.PriceRecord, error) {
	f.benchmark, f.series, f.from, f.to = benchmark, series, from, to
	return f.records, nil
}

type testEnv struct {
	srv   *httptest.Server
	views *views.Views
	store *memorystore.Store
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	return setupWith(t, api.Options{CORSOrigin: "*", Mode: "test"})
}

func setupWith(t *testing.T, opts api.Options) *testEnv {
	t.Helper()
	now := time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)
	ds, err := seriesgen.Generate(seriesgen.DefaultConfig(now))
	require.NoError(t, err)

	logger := zap.NewNop()
	store := memorystore.NewSeeded(ds)
	m := metrics.New()
	coord := coordinator.New(logger, store, coordinator.Config{
		Now:      func() time.Time { return now },
		Recorder: m,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = coord.Run(ctx)
	}()

	v := views.New(logger, store, coord, nil)
	hub := stream.NewHub(logger, coord, stream.Config{})
	server := api.NewServer(v, coord, hub, m, logger, opts)
	srv := httptest.NewServer(server)

	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		cancel()
		<-done
	})
	return &testEnv{srv: srv, views: v, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&v))
	return v
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// go test -v --run ^TestHealth$
func TestHealth(t *testing.T) {
	e := setup(t)
	status, body := e.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)

	h := decode[views.Health](t, body)
	assert.True(t, h.OK)
	assert.False(t, h.Degraded)
	assert.Empty(t, h.Banners)
}

// go test -v --run ^TestFiltersRoundTrip$
func TestFiltersRoundTrip(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodPut, "/api/filters", `{"commodity":"WTI"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[coordinator.Result](t, body)
	assert.Equal(t, "WTI", res.Session.Filters.Commodity)
	require.Len(t, res.Events, 1)
	assert.Equal(t, coordinator.EventFiltersChanged, res.Events[0].Type)

	status, body = e.do(t, http.MethodGet, "/api/trades", "")
	require.Equal(t, http.StatusOK, status)
	table := decode[render.TradeTable](t, body)
	assert.Equal(t, 2, table.Visible)
	assert.Equal(t, 4, table.Total)

	status, body = e.do(t, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"commodity":"WTI","location":"","counterparty":"","date":""}`, string(body))

	status, _ = e.do(t, http.MethodDelete, "/api/filters", "")
	require.Equal(t, http.StatusOK, status)
	_, body = e.do(t, http.MethodGet, "/api/trades", "")
	assert.Equal(t, 4, decode[render.TradeTable](t, body).Visible)
}

// go test -v --run ^TestFiltersValidation$
func TestFiltersValidation(t *testing.T) {
	e := setup(t)

	long := strings.Repeat("x", 65)
	status, body := e.do(t, http.MethodPut, "/api/filters", `{"counterparty":"`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", decode[apiError](t, body).Code)

	status, _ = e.do(t, http.MethodPut, "/api/filters", `{"commodity":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

// go test -v --run ^TestApplyRecommendationEndpoint$
func TestApplyRecommendationEndpoint(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodPost, "/api/recommendations/1/apply", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[coordinator.Result](t, body)
	require.NotNil(t, res.Trade)
	assert.Equal(t, 5, res.Trade.ID)
	assert.Equal(t, "Proposed", string(res.Trade.Status))
	assert.Equal(t, 5, e.store.Trades.Count())

	status, body = e.do(t, http.MethodPost, "/api/recommendations/99/apply", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", decode[apiError](t, body).Code)
	assert.Equal(t, 5, e.store.Trades.Count())

	status, _ = e.do(t, http.MethodPost, "/api/recommendations/abc/apply", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodGet, "/api/recommendations", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]render.RecommendationCard](t, body), 3)
}

// go test -v --run ^TestDrawerLifecycle$
func TestDrawerLifecycle(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodGet, "/api/trades/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "$4,105,000", decode[render.TradeDetail](t, body).Notional)

	status, _ = e.do(t, http.MethodGet, "/api/trades/77", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = e.do(t, http.MethodPost, "/api/trades/77/open", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(t, http.MethodPost, "/api/trades/1/open", "")
	require.Equal(t, http.StatusOK, status)

	status, body = e.do(t, http.MethodPost, "/api/drawer/advance", "")
	require.Equal(t, http.StatusOK, status)
	res := decode[coordinator.Result](t, body)
	assert.True(t, res.Changed)
	assert.Equal(t, "Invoiced", string(res.Trade.Status))

	status, body = e.do(t, http.MethodPost, "/api/drawer/close", "")
	require.Equal(t, http.StatusOK, status)
	res = decode[coordinator.Result](t, body)
	assert.Equal(t, 0, res.Session.OpenTradeID)
	assert.Equal(t, 1, res.Session.FocusTradeID)
}

// go test -v --run ^TestKPIEndpoints$
func TestKPIEndpoints(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodGet, "/api/kpis", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]render.KPITile](t, body), 4)

	status, body = e.do(t, http.MethodPost, "/api/kpis/wti/select", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "WTI", decode[coordinator.Result](t, body).Session.Filters.Commodity)

	status, _ = e.do(t, http.MethodPost, "/api/kpis/vol/select", "")
	assert.Equal(t, http.StatusNotFound, status)
}

// go test -v --run ^TestMarketEndpoints$
func TestMarketEndpoints(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodGet, "/api/market?forecast=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[render.MarketChart](t, body).Labels, 105)

	status, body = e.do(t, http.MethodGet, "/api/market", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[render.MarketChart](t, body).Labels, 90)

	status, _ = e.do(t, http.MethodGet, "/api/market?forecast=maybe", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.do(t, http.MethodPut, "/api/market/forecast", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodPut, "/api/market/forecast", `{"show":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[coordinator.Result](t, body).Session.ForecastVisible)

	status, body = e.do(t, http.MethodGet, "/api/market", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[render.MarketChart](t, body).Labels, 105)
}

// go test -v --run ^TestMarketHistory$
func TestMarketHistory(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC) }
	h := &fakeHistory{records: []postgres.PriceRecord{
		{Benchmark: "WTI", Series: postgres.SeriesClose, Date: day(1), Price: 78.2},
		{Benchmark: "WTI", Series: postgres.SeriesClose, Date: day(2), Price: 78.9},
	}}
	e := setupWith(t, api.Options{Mode: "test", History: h})

	status, body := e.do(t, http.MethodGet, "/api/market/history?benchmark=WTI&from=2025-07-01&to=2025-07-02", "")
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"benchmark":"WTI","series":"close","points":[
		{"date":"2025-07-01","price":78.2},{"date":"2025-07-02","price":78.9}]}`, string(body))
	assert.Equal(t, "close", h.series)
	assert.Equal(t, day(1), h.from)
	assert.Equal(t, day(2), h.to)

	status, _ = e.do(t, http.MethodGet, "/api/market/history?benchmark=Dubai", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = e.do(t, http.MethodGet, "/api/market/history?benchmark=WTI&from=2025-07-09&to=2025-07-01", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

// go test -v --run ^TestMarketHistoryWithoutArchive$
func TestMarketHistoryWithoutArchive(t *testing.T) {
	e := setup(t)
	status, body := e.do(t, http.MethodGet, "/api/market/history?benchmark=WTI", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", decode[apiError](t, body).Code)
}

// stalledDispatcher never answers before the caller's deadline.
type stalledDispatcher struct{}

func (stalledDispatcher) Dispatch(ctx context.Context, _ coordinator.Command) (coordinator.Result, error) {
	<-ctx.Done()
	return coordinator.Result{}, ctx.Err()
}

func (stalledDispatcher) Session() coordinator.Session { return coordinator.Session{} }

// go test -v --run ^TestCommandTimeoutReturns504$
func TestCommandTimeoutReturns504(t *testing.T) {
	ds, err := seriesgen.Generate(seriesgen.DefaultConfig(time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	logger := zap.NewNop()
	v := views.New(logger, memorystore.NewSeeded(ds), stalledDispatcher{}, nil)
	server := api.NewServer(v, stalledDispatcher{}, nil, nil, logger, api.Options{Mode: "test", CommandTimeout: 20 * time.Millisecond})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drawer/advance", nil))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	e := decode[apiError](t, rec.Body.Bytes())
	assert.Equal(t, "timeout", e.Code)
	assert.Contains(t, e.Message, "outcome unknown")
}

// go test -v --run ^TestUnavailableComponentReturns503$
func TestUnavailableComponentReturns503(t *testing.T) {
	e := setup(t)
	e.views.MarkUnavailable(render.ComponentHeatmap)

	status, body := e.do(t, http.MethodGet, "/api/risk", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", decode[apiError](t, body).Code)

	status, _ = e.do(t, http.MethodGet, "/api/vessels", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = e.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, status)
	d := decode[views.DashboardView](t, body)
	assert.True(t, d.Degraded)
	assert.Nil(t, d.Heatmap)
	require.Len(t, d.Banners, 1)
	assert.Equal(t, "Failed to initialize risk heatmap", d.Banners[0].Message)
}

// go test -v --run ^TestReferenceAndCORS$
func TestReferenceAndCORS(t *testing.T) {
	e := setup(t)

	status, body := e.do(t, http.MethodGet, "/api/reference", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Omega Marine")

	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/filters", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// go test -v --run ^TestMetricsEndpoint$
func TestMetricsEndpoint(t *testing.T) {
	e := setup(t)
	e.do(t, http.MethodDelete, "/api/filters", "")

	status, body := e.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `ctrmdash_commands_total{command="reset_filters",outcome="ok"} 1`)
	assert.Contains(t, string(body), `route="/api/filters"`)
}

// go test -v --run ^TestWebsocketReceivesFilterChange$
func TestWebsocketReceivesFilterChange(t *testing.T) {
	e := setup(t)

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	status, _ := e.do(t, http.MethodPut, "/api/filters", `{"counterparty":"Acme Air"}`)
	require.Equal(t, http.StatusOK, status)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev coordinator.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, coordinator.EventFiltersChanged, ev.Type)
	assert.Equal(t, "Acme Air", ev.Session.Filters.Counterparty)
	require.NotNil(t, ev.Table)
	assert.Equal(t, 1, ev.Table.Visible)
}
