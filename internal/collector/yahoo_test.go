package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

type fakeSeries struct {
	closes  []*float64
	price   float64
	high52w float64
	low52w  float64
}

// chartServer serves chart, quote summary and options responses per
// symbol; unknown symbols 404
type chartServer struct {
	*httptest.Server

	mu        sync.Mutex
	series    map[string]fakeSeries
	summaries map[string]interface{}
	chains    map[string][]optionChain
	requests  map[string]int
}

func newChartServer(t *testing.T, series map[string]fakeSeries) *chartServer {
	t.Helper()
	cs := &chartServer{
		series:    series,
		summaries: map[string]interface{}{},
		chains:    map[string][]optionChain{},
		requests:  map[string]int{},
	}
	cs.Server = httptest.NewServer(http.HandlerFunc(cs.handle))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *chartServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
		cs.handleSummary(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/v7/finance/options/"):
		cs.handleOptions(w, r)
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")

	cs.mu.Lock()
	cs.requests[symbol]++
	s, ok := cs.series[symbol]
	cs.mu.Unlock()

	if !ok || r.URL.Query().Get("interval") != "1d" {
		http.NotFound(w, r)
		return
	}

	start := time.Date(2025, 10, 20, 20, 0, 0, 0, time.UTC)
	timestamps := make([]int64, len(s.closes))
	for i := range s.closes {
		timestamps[i] = start.AddDate(0, 0, i).Unix()
	}

	body := map[string]interface{}{
		"chart": map[string]interface{}{
			"result": []interface{}{
				map[string]interface{}{
					"meta": map[string]interface{}{
						"symbol":             symbol,
						"regularMarketPrice": s.price,
						"fiftyTwoWeekHigh":   s.high52w,
						"fiftyTwoWeekLow":    s.low52w,
					},
					"timestamp": timestamps,
					"indicators": map[string]interface{}{
						"quote": []interface{}{
							map[string]interface{}{
								"open":   s.closes,
								"high":   s.closes,
								"low":    s.closes,
								"close":  s.closes,
								"volume": s.closes,
							},
						},
					},
				},
			},
			"error": nil,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (cs *chartServer) count(symbol string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.requests[symbol]
}

func floats(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		out[i] = &values[i]
	}
	return out
}

func ramp(from float64, n int) []*float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = from + float64(i)
	}
	return floats(values...)
}

func newTestYahoo(baseURL string) *Yahoo {
	client := httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
	return NewYahoo(client, baseURL, logger.NewNop())
}

func TestYahoo_Stock(t *testing.T) {
	server := newChartServer(t, map[string]fakeSeries{
		"NVDA": {closes: ramp(100, 220), price: 320, high52w: 330, low52w: 95},
	})
	y := newTestYahoo(server.URL)

	data, err := y.Stock(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", data.Ticker)
	assert.Equal(t, 320.0, data.Price)
	assert.InDelta(t, 294.5, data.MA50, 1e-9)
	assert.InDelta(t, 219.5, data.MA200, 1e-9)
	assert.InDelta(t, 100.0, data.RSI14, 1e-9)
	assert.Equal(t, 330.0, data.High52W)
	assert.Equal(t, 95.0, data.Low52W)
	assert.Equal(t, -3.03, data.PctFromHigh52W)
	require.Len(t, data.History, historyBars)
	assert.Equal(t, 319.0, data.History[historyBars-1].Close)
}

func TestYahoo_StockSkipsNullBarsAndDerivesRange(t *testing.T) {
	v := []float64{10, 12, 11}
	closes := []*float64{&v[0], nil, &v[1], &v[2]}

	server := newChartServer(t, map[string]fakeSeries{"PLTR": {closes: closes}})
	y := newTestYahoo(server.URL)

	data, err := y.Stock(context.Background(), "PLTR")
	require.NoError(t, err)

	assert.Len(t, data.History, 3)
	assert.Equal(t, 11.0, data.Price) // last close when meta has no price
	assert.Equal(t, 12.0, data.High52W)
	assert.Equal(t, 10.0, data.Low52W)
	assert.Zero(t, data.MA50)
	assert.Zero(t, data.RSI14)
}

func TestYahoo_StockErrors(t *testing.T) {
	server := newChartServer(t, map[string]fakeSeries{"EMPTY": {}})
	y := newTestYahoo(server.URL)

	_, err := y.Stock(context.Background(), "EMPTY")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = y.Stock(context.Background(), "MISSING")
	var statusErr *httputil.StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func macroSeries() map[string]fakeSeries {
	return map[string]fakeSeries{
		"^VIX":     {closes: floats(20, 20, 20, 20, 20, 20, 20, 20, 20, 24)},
		"^TNX":     {closes: floats(4.1, 4.2)},
		"^IRX":     {closes: floats(4.5)},
		"GC=F":     {closes: floats(2000.123)},
		"CL=F":     {closes: floats(70)},
		"DX-Y.NYB": {closes: floats(104)},
		"SPY":      {closes: floats(100, 101, 102)},
		"XLK":      {closes: floats(100, 105)},
		"XLU":      {closes: floats(100, 99)},
	}
}

func TestYahoo_Macro(t *testing.T) {
	server := newChartServer(t, macroSeries())
	y := newTestYahoo(server.URL)

	m := y.Macro(context.Background(), "Technology")

	assert.Equal(t, 24.0, m.VIX)
	assert.Equal(t, 20.0, m.VIXChange5D)
	assert.Equal(t, 4.2, m.Treasury10Y)
	assert.Equal(t, 4.5, m.Treasury2Y) // 2YY=F missing, falls back to ^IRX
	assert.Equal(t, 2000.12, m.Gold)
	assert.Equal(t, 70.0, m.Oil)
	assert.Equal(t, 104.0, m.Dollar)
	assert.Equal(t, 2.0, m.SPYReturn1M)
	assert.Equal(t, map[string]float64{"XLK": 5, "XLU": -1}, m.SectorReturns)
	assert.Equal(t, "Technology", m.StockSector)
	assert.Equal(t, 3.0, m.SectorVsSPY)

	spread, ok := m.YieldSpread()
	assert.True(t, ok)
	assert.InDelta(t, -0.3, spread, 1e-9)
}

func TestYahoo_MacroIsCached(t *testing.T) {
	server := newChartServer(t, macroSeries())
	y := newTestYahoo(server.URL)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	y.now = func() time.Time { return now }

	first := y.Macro(context.Background(), "Technology")
	second := y.Macro(context.Background(), "Utilities")

	assert.Equal(t, 1, server.count("^VIX"))
	assert.Equal(t, 3.0, first.SectorVsSPY)
	assert.Equal(t, -3.0, second.SectorVsSPY)
	assert.Equal(t, "Utilities", second.StockSector)

	// callers get independent copies
	second.SectorReturns["XLK"] = 0
	assert.Equal(t, 5.0, first.SectorReturns["XLK"])

	now = now.Add(macroTTL + time.Second)
	y.Macro(context.Background(), "")
	assert.Equal(t, 2, server.count("^VIX"))
}

func TestYahoo_MacroDegrades(t *testing.T) {
	server := newChartServer(t, map[string]fakeSeries{})
	y := newTestYahoo(server.URL)

	m := y.Macro(context.Background(), "Unknown Sector")

	assert.Zero(t, m.VIX)
	assert.Zero(t, m.Treasury10Y)
	assert.Empty(t, m.SectorReturns)
	assert.Zero(t, m.SectorVsSPY)
}

func TestSectorETF(t *testing.T) {
	assert.Equal(t, "XLK", SectorETF("Technology"))
	assert.Equal(t, "XLY", SectorETF(" consumer cyclical "))
	assert.Equal(t, "", SectorETF("Crypto"))
	assert.Len(t, SectorETFs, 11)
}
