package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const nvdaYAML = `
stock:
  sector: Technology
  trailing_pe: 65.2
  forward_pe: 38.1
  target_mean_price: 210
  analyst_count: 52
  insiders_pct_held: 0.04
  put_call_ratio: 0.62
  insider_transactions:
    - insider: HUANG JEN HSUN
      text: Sale at price 180.10 per share.
      shares: 120000
      value: 21612000
      date: 2026-10-01T00:00:00Z
macro:
  gold: 2410.5
`

func writeSnapshot(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFileSource_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "NVDA.yaml", nvdaYAML)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	fs := NewFileSource(dir)
	fs.now = func() time.Time { return now }

	snap, err := fs.Load("nvda")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", snap.Ticker)
	assert.Equal(t, now, snap.AsOf)
	require.NotNil(t, snap.Stock)
	assert.Equal(t, "NVDA", snap.Stock.Ticker)
	assert.Equal(t, "Technology", snap.Stock.Sector)
	assert.Equal(t, 52, snap.Stock.AnalystCount)
	require.Len(t, snap.Stock.InsiderTransactions, 1)
	assert.Equal(t, 120000.0, snap.Stock.InsiderTransactions[0].Shares)
	assert.Equal(t, 2410.5, snap.Macro.Gold)
	assert.Nil(t, snap.News)
}

func TestFileSource_LoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "TSLA.json", `{"ticker":"TSLA","as_of":"2026-10-18T20:00:00Z","stock":{"price":250,"rsi_14":72}}`)

	snap, err := NewFileSource(dir).Collect(context.Background(), "TSLA")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC), snap.AsOf)
	assert.Equal(t, 250.0, snap.Stock.Price)
	assert.Equal(t, 72.0, snap.Stock.RSI14)
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "AMD.yaml", "stock:\n  pe_ratio: 30\n")
	writeSnapshot(t, dir, "META.json", `{"stock":{"price":1},"extra":true}`)
	fs := NewFileSource(dir)

	_, err := fs.Load("AAPL")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = fs.Load("AMD")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)

	_, err = fs.Load("META")
	assert.Error(t, err)
}

func TestFileSource_PathPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "MSFT.json", `{}`)
	writeSnapshot(t, dir, "MSFT.yml", "ticker: MSFT\n")

	path, err := NewFileSource(dir).Path("msft")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "MSFT.yml"), path)
}

func TestMerge(t *testing.T) {
	days := 5
	base := &contracts.Snapshot{
		Ticker: "NVDA",
		AsOf:   time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Stock:  &contracts.StockData{Ticker: "NVDA", Price: 181, RSI14: 55, TrailingPE: 60},
		Macro:  &contracts.MacroData{VIX: 18, SectorReturns: map[string]float64{"XLK": 2}},
	}
	overlay := &contracts.Snapshot{
		Stock: &contracts.StockData{TrailingPE: 65, Sector: "Technology", DaysToEarnings: &days},
		News:  &contracts.NewsData{TickerSentiment: 0.4},
	}

	got, err := Merge(base, overlay)
	require.NoError(t, err)

	assert.Equal(t, "NVDA", got.Ticker)
	assert.Equal(t, base.AsOf, got.AsOf)
	assert.Equal(t, 181.0, got.Stock.Price)
	assert.Equal(t, 55.0, got.Stock.RSI14)
	assert.Equal(t, 65.0, got.Stock.TrailingPE)
	assert.Equal(t, "Technology", got.Stock.Sector)
	require.NotNil(t, got.Stock.DaysToEarnings)
	assert.Equal(t, 5, *got.Stock.DaysToEarnings)
	assert.Equal(t, 18.0, got.Macro.VIX)
	assert.Equal(t, 0.4, got.News.TickerSentiment)
}

func TestMerge_Nil(t *testing.T) {
	snap := &contracts.Snapshot{Ticker: "AMD"}

	got, err := Merge(nil, snap)
	require.NoError(t, err)
	assert.Same(t, snap, got)

	got, err = Merge(snap, nil)
	require.NoError(t, err)
	assert.Same(t, snap, got)
}
