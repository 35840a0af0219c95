package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// SectorETFs maps SPDR sector ETFs to display names
var SectorETFs = map[string]string{
	"XLK":  "Technology",
	"XLF":  "Financials",
	"XLE":  "Energy",
	"XLV":  "Healthcare",
	"XLY":  "Consumer Discretionary",
	"XLP":  "Consumer Staples",
	"XLI":  "Industrials",
	"XLB":  "Materials",
	"XLRE": "Real Estate",
	"XLC":  "Communication Services",
	"XLU":  "Utilities",
}

var sectorToETF = map[string]string{
	"technology":             "XLK",
	"financial services":     "XLF",
	"financials":             "XLF",
	"energy":                 "XLE",
	"healthcare":             "XLV",
	"consumer cyclical":      "XLY",
	"consumer discretionary": "XLY",
	"consumer defensive":     "XLP",
	"consumer staples":       "XLP",
	"industrials":            "XLI",
	"basic materials":        "XLB",
	"materials":              "XLB",
	"real estate":            "XLRE",
	"communication services": "XLC",
	"utilities":              "XLU",
}

// SectorETF resolves a sector name ("Technology", "Consumer Cyclical")
// to its ETF symbol, or "" when unknown.
func SectorETF(sector string) string {
	return sectorToETF[strings.ToLower(strings.TrimSpace(sector))]
}

const (
	macroFetchLimit   = 4
	macroFetchTimeout = 30 * time.Second
)

// Macro collects market-wide context. It never fails: each series that
// cannot be fetched is left at zero. Results are cached for a few minutes
// so a watchlist scan fetches them once.
func (y *Yahoo) Macro(ctx context.Context, sector string) *contracts.MacroData {
	base, spy := y.cachedMacro(ctx)

	data := *base
	data.SectorReturns = make(map[string]float64, len(base.SectorReturns))
	for k, v := range base.SectorReturns {
		data.SectorReturns[k] = v
	}

	data.StockSector = sector
	if etf := SectorETF(sector); etf != "" {
		if ret, ok := data.SectorReturns[etf]; ok {
			data.SectorVsSPY = round(ret-spy, 2)
		}
	}
	return &data
}

// cachedMacro returns the cached series or fetches them. The fetch is
// detached from the caller's cancellation. Empty results are not cached.
func (y *Yahoo) cachedMacro(ctx context.Context) (*contracts.MacroData, float64) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.macro != nil && y.now().Before(y.macroUntil) {
		return y.macro, y.macroSPY
	}
	if ctx.Err() != nil {
		return &contracts.MacroData{SectorReturns: map[string]float64{}}, 0
	}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), macroFetchTimeout)
	defer cancel()

	data, spy, got := y.fetchMacro(fctx)
	if got == 0 {
		y.logger.Warn("No macro series available, not caching")
		return data, spy
	}
	y.macro, y.macroSPY = data, spy
	y.macroUntil = y.now().Add(macroTTL)
	return data, spy
}

// fetchMacro reports how many series came back alongside the data
func (y *Yahoo) fetchMacro(ctx context.Context) (*contracts.MacroData, float64, int) {
	data := &contracts.MacroData{SectorReturns: make(map[string]float64, len(SectorETFs))}

	var (
		mu  sync.Mutex
		spy float64
		got int
	)
	hit := func(v float64) {
		if v != 0 {
			got++
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(macroFetchLimit)

	g.Go(func() error {
		ch, ok := y.series(gctx, "^VIX", "10d")
		if !ok {
			return nil
		}
		closes := ch.closes()
		mu.Lock()
		defer mu.Unlock()
		got++
		data.VIX = round(closes[len(closes)-1], 2)
		if len(closes) >= 6 {
			data.VIXChange5D = round(pctChange(closes[len(closes)-6:]), 2)
		}
		return nil
	})

	g.Go(func() error {
		tenY := y.lastClose(gctx, "^TNX")
		twoY := y.lastClose(gctx, "2YY=F")
		if twoY == 0 {
			twoY = y.lastClose(gctx, "^IRX")
		}
		mu.Lock()
		defer mu.Unlock()
		hit(tenY)
		hit(twoY)
		data.Treasury10Y = round(tenY, 3)
		data.Treasury2Y = round(twoY, 3)
		return nil
	})

	lastCloses := []struct {
		symbol string
		dest   *float64
	}{
		{"GC=F", &data.Gold},
		{"CL=F", &data.Oil},
		{"DX-Y.NYB", &data.Dollar},
	}
	for _, lc := range lastCloses {
		lc := lc
		g.Go(func() error {
			v := round(y.lastClose(gctx, lc.symbol), 2)
			mu.Lock()
			hit(v)
			*lc.dest = v
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		ch, ok := y.series(gctx, "SPY", "1mo")
		if !ok {
			return nil
		}
		ret := pctChange(ch.closes())
		mu.Lock()
		got++
		spy = ret
		data.SPYReturn1M = round(ret, 2)
		mu.Unlock()
		return nil
	})
	for etf := range SectorETFs {
		etf := etf
		g.Go(func() error {
			ch, ok := y.series(gctx, etf, "1mo")
			if !ok {
				return nil
			}
			mu.Lock()
			got++
			data.SectorReturns[etf] = round(pctChange(ch.closes()), 2)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	y.logger.WithFields(map[string]interface{}{
		"vix":     data.VIX,
		"tnx":     data.Treasury10Y,
		"sectors": len(data.SectorReturns),
		"series":  got,
	}).Debug("Collected macro data")

	return data, spy, got
}

// series fetches a chart and reports whether it has any bars
func (y *Yahoo) series(ctx context.Context, symbol, rng string) (*chart, bool) {
	ch, err := y.fetchChart(ctx, symbol, rng)
	if err != nil {
		y.logger.WithError(err).WithField("symbol", symbol).Debug("Macro series unavailable")
		return nil, false
	}
	if len(ch.Bars) == 0 {
		return nil, false
	}
	return ch, true
}

func (y *Yahoo) lastClose(ctx context.Context, symbol string) float64 {
	ch, ok := y.series(ctx, symbol, "5d")
	if !ok {
		return 0
	}
	return ch.Bars[len(ch.Bars)-1].Close
}
