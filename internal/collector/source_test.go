package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

func liveSeries() map[string]fakeSeries {
	series := macroSeries()
	series["NVDA"] = fakeSeries{closes: ramp(100, 220), price: 320, high52w: 330, low52w: 95}
	return series
}

func TestCollector_LiveWithFileOverlay(t *testing.T) {
	server := newChartServer(t, liveSeries())
	dir := t.TempDir()
	writeSnapshot(t, dir, "NVDA.yaml", nvdaYAML)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := New(newTestYahoo(server.URL), NewFileSource(dir), logger.NewNop())
	c.now = func() time.Time { return now }

	snap, err := c.Collect(context.Background(), " nvda ")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", snap.Ticker)
	assert.Equal(t, now, snap.AsOf)
	require.NotNil(t, snap.Stock)
	assert.Equal(t, 320.0, snap.Stock.Price)
	assert.Equal(t, 65.2, snap.Stock.TrailingPE)
	assert.Equal(t, "Technology", snap.Stock.Sector)

	require.NotNil(t, snap.Macro)
	assert.Equal(t, 24.0, snap.Macro.VIX)
	assert.Equal(t, 2410.5, snap.Macro.Gold) // file wins
	assert.Equal(t, 3.0, snap.Macro.SectorVsSPY)
}

func TestCollector_LiveOnly(t *testing.T) {
	server := newChartServer(t, liveSeries())
	c := New(newTestYahoo(server.URL), nil, logger.NewNop())

	snap, err := c.Collect(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Empty(t, snap.Stock.Sector) // no quote summary served
	assert.Zero(t, snap.Macro.SectorVsSPY)
	assert.Nil(t, snap.News)
}

func TestCollector_FallsBackToFile(t *testing.T) {
	server := newChartServer(t, macroSeries())
	dir := t.TempDir()
	writeSnapshot(t, dir, "NVDA.yaml", nvdaYAML)

	c := New(newTestYahoo(server.URL), NewFileSource(dir), logger.NewNop())

	snap, err := c.Collect(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 65.2, snap.Stock.TrailingPE)
	assert.Zero(t, snap.Stock.Price)
	assert.Equal(t, 24.0, snap.Macro.VIX)
}

func TestCollector_Errors(t *testing.T) {
	server := newChartServer(t, macroSeries())
	dir := t.TempDir()

	c := New(newTestYahoo(server.URL), NewFileSource(dir), logger.NewNop())
	_, err := c.Collect(context.Background(), "NVDA")
	assert.Error(t, err)

	_, err = c.Collect(context.Background(), "  ")
	assert.Error(t, err)

	offline := New(nil, NewFileSource(dir), logger.NewNop())
	_, err = offline.Collect(context.Background(), "NVDA")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestCollector_Offline(t *testing.T) {
	dir := t.TempDir()
	writeSnapshot(t, dir, "NVDA.yaml", nvdaYAML)

	c := New(nil, NewFileSource(dir), logger.NewNop())
	snap, err := c.Collect(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 2410.5, snap.Macro.Gold)
	assert.Zero(t, snap.Macro.VIX)
}
