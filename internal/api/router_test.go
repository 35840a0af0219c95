package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/internal/api/handlers"
	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
	"github.com/wonny/alpha-engine/backend/pkg/redis"
)

type stubAnalyzer struct {
	calls int
	err   error
	panic bool
}

func (s *stubAnalyzer) Analyze(_ context.Context, ticker string) (*contracts.Analysis, error) {
	s.calls++
	if s.panic {
		panic("extractor blew up")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &contracts.Analysis{
		Ticker: ticker,
		AsOf:   time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC),
		Price:  181.5,
		Signals: []contracts.Signal{
			contracts.NeutralSignal(contracts.CategoryTechnical, "No stock data"),
		},
		Score: contracts.ConsensusScore{
			Direction:             contracts.ConsensusNeutral,
			AlphaPotential:        contracts.AlphaNone,
			ContradictionSeverity: contracts.SeverityNone,
		},
		Interpretation: "INTERPRETATION: No clear edge. Wait for stronger signal alignment.",
	}, nil
}

type testEnv struct {
	server   *httptest.Server
	analyzer *stubAnalyzer
	registry *prometheus.Registry
	store    news.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newLimitedTestEnv(t, RateLimit{})
}

func newLimitedTestEnv(t *testing.T, limit RateLimit) *testEnv {
	t.Helper()
	log := logger.NewNop()

	store, err := news.OpenSQLite(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	// disabled client: every cache read misses
	rc, err := redis.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	analyzer := &stubAnalyzer{}
	registry := prometheus.NewRegistry()

	cache := redis.NewCache(rc, "alpha")
	router := NewRouter(Handlers{
		Analysis: handlers.NewAnalysisHandler(analyzer, cache, log),
		News:     handlers.NewNewsHandler(store, cache, log),
	}, registry, metrics.New(registry), limit, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, analyzer: analyzer, registry: registry, store: store}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.server.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"alpha-engine-api"}`, body)
}

func TestGetAnalysis(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.server.URL+"/api/analysis/nvda")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	var a contracts.Analysis
	require.NoError(t, json.Unmarshal([]byte(body), &a))
	assert.Equal(t, "NVDA", a.Ticker)
	assert.Equal(t, contracts.ConsensusNeutral, a.Score.Direction)
}

func TestGetAnalysis_Errors(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := get(t, env.server.URL+"/api/analysis/not%20a%20ticker")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, env.analyzer.calls)

	env.analyzer.err = errors.New("chart unavailable")
	resp, body := get(t, env.server.URL+"/api/analysis/TSLA")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Failed to analyze TSLA")
}

func TestGetAnalysis_PanicRecovered(t *testing.T) {
	env := newTestEnv(t)
	env.analyzer.panic = true

	resp, body := get(t, env.server.URL+"/api/analysis/AMD")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal server error"}`, body)
}

func TestGetReport(t *testing.T) {
	env := newTestEnv(t)

	resp, body := get(t, env.server.URL+"/api/analysis/AAPL/report")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
	assert.True(t, strings.HasPrefix(body, "# AAPL Contradiction Analysis Report"))
}

func TestListNews(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()

	_, err := env.store.Save(context.Background(),
		news.Item{Source: "finviz", Category: news.CategoryStockNews, Title: "NVDA beats", Ticker: "NVDA", PublishedAt: now.Add(-time.Hour), ScrapedAt: now, Importance: "medium"},
		news.Item{Source: "jin10", Category: news.CategoryMacro, Title: "Fed holds rates", PublishedAt: now.Add(-2 * time.Hour), ScrapedAt: now, Importance: "high"},
		news.Item{Source: "jin10", Category: news.CategoryMacro, Title: "Old CPI print", PublishedAt: now.Add(-48 * time.Hour), ScrapedAt: now, Importance: "high"},
	)
	require.NoError(t, err)

	var listing handlers.NewsResponse

	_, body := get(t, env.server.URL+"/api/news?ticker=nvda")
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	assert.Equal(t, "NVDA", listing.Ticker)
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "NVDA beats", listing.Items[0].Title)

	_, body = get(t, env.server.URL+"/api/news")
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "Fed holds rates", listing.Items[0].Title)

	_, body = get(t, env.server.URL+"/api/news?hours=72&source=jin10")
	require.NoError(t, json.Unmarshal([]byte(body), &listing))
	assert.Equal(t, 72, listing.Hours)
	assert.Equal(t, 2, listing.Count)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	get(t, env.server.URL+"/api/analysis/NVDA")
	resp, body := get(t, env.server.URL+"/metrics")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `alpha_http_requests_total{method="GET",route="/api/analysis/{ticker}",status="200"} 1`)
}
