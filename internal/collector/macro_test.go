package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func (cs *chartServer) set(symbol string, s fakeSeries) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.series[symbol] = s
}

func TestYahoo_MacroCanceledCallDoesNotBlankCache(t *testing.T) {
	server := newChartServer(t, macroSeries())
	y := newTestYahoo(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	aborted := y.Macro(ctx, "Technology")
	assert.Zero(t, aborted.VIX)
	assert.Empty(t, aborted.SectorReturns)

	healthy := y.Macro(context.Background(), "Technology")
	assert.Equal(t, 24.0, healthy.VIX)
	assert.Equal(t, 4.2, healthy.Treasury10Y)
	assert.NotEmpty(t, healthy.SectorReturns)
	assert.Equal(t, 3.0, healthy.SectorVsSPY)
	assert.Equal(t, 1, server.count("^VIX"))
}

func TestYahoo_MacroEmptyFetchIsNotCached(t *testing.T) {
	server := newChartServer(t, map[string]fakeSeries{})
	y := newTestYahoo(server.URL)

	first := y.Macro(context.Background(), "")
	assert.Zero(t, first.VIX)

	for symbol, s := range macroSeries() {
		server.set(symbol, s)
	}

	second := y.Macro(context.Background(), "")
	assert.Equal(t, 24.0, second.VIX)
	assert.Equal(t, 2, server.count("^VIX"))

	// a non-empty result is cached
	y.Macro(context.Background(), "")
	assert.Equal(t, 2, server.count("^VIX"))
}

func TestYahoo_MacroPartialFetchIsCached(t *testing.T) {
	server := newChartServer(t, map[string]fakeSeries{
		"^VIX": {closes: floats(18)},
	})
	y := newTestYahoo(server.URL)

	m := y.Macro(context.Background(), "")
	assert.Equal(t, 18.0, m.VIX)
	assert.Zero(t, m.Treasury10Y)

	y.Macro(context.Background(), "")
	assert.Equal(t, 1, server.count("^VIX"))
}
