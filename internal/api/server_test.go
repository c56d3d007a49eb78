package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/tradelab/internal/api/job"
	"github.com/newthinker/tradelab/internal/backtest"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/newthinker/tradelab/internal/strategy"
	"github.com/newthinker/tradelab/internal/strategy/ma_crossover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validTicker = `{"datetime":"2024-01-02T09:30:00","open":100,"high":101,"low":99,"close":100.5,"volume":10}`

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	store := ticker.NewMemoryStore()
	reg := metrics.NewRegistry()
	engine := strategy.NewEngine()
	engine.Register(ma_crossover.Name, ma_crossover.Factory)

	srv, err := NewServer(cfg, Dependencies{
		Ingest:     ingest.NewService(store, nil, reg, nil),
		Backtester: backtest.New(store, backtest.WithMetrics(reg)),
		Strategies: engine,
		Strategy:   ma_crossover.Name,
		Params:     map[string]any{"short_window": 5, "long_window": 20},
		Jobs:       job.NewStore(10, time.Hour),
		Metrics:    reg,
	}, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, Config{Host: "localhost", Version: "test"})

	w := serve(srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(srv, http.MethodGet, "/", "", nil)
	assert.JSONEq(t, `{"message":"Trading Strategy API","version":"test"}`, w.Body.String())
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := serve(srv, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_APIAuth(t *testing.T) {
	srv := newTestServer(t, Config{APIKey: "test-key"})

	tests := []struct {
		name   string
		method string
		target string
		body   string
		key    string
		want   int
	}{
		{"create without key", http.MethodPost, "/data", validTicker, "", http.StatusUnauthorized},
		{"create with wrong key", http.MethodPost, "/data", validTicker, "nope", http.StatusUnauthorized},
		{"create with key", http.MethodPost, "/data", validTicker, "test-key", http.StatusOK},
		{"delete without key", http.MethodDelete, "/data/all", "", "", http.StatusUnauthorized},
		{"reads stay open", http.MethodGet, "/data/count", "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.key != "" {
				header["X-API-Key"] = tt.key
			}
			w := serve(srv, tt.method, tt.target, tt.body, header)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestServer_APIAuth_Disabled(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := serve(srv, http.MethodPost, "/data", validTicker, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestServer_PerformanceNoData(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := serve(srv, http.MethodGet, "/strategy/performance", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NO_DATA"`)
}

func TestServer_SnapshotsWithoutArchive(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := serve(srv, http.MethodPost, "/snapshots", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, Config{MetricsPath: "/metrics"})

	serve(srv, http.MethodGet, "/data/count", "", nil)

	w := serve(srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="GET /data/count"`)
}

func TestNewServer_MissingDependencies(t *testing.T) {
	_, err := NewServer(Config{}, Dependencies{}, nil)
	assert.Error(t, err)
}

func TestServer_Addr(t *testing.T) {
	srv := newTestServer(t, Config{Host: "127.0.0.1", Port: 8000})
	assert.Equal(t, "127.0.0.1:8000", srv.Addr())
}
