package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

func testClient() *httputil.Client {
	return httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
}

const jin10Body = `{
  "status": 200,
  "data": [
    {"id": "1", "time": "2026-10-19 09:30:00", "important": 1, "data": {"content": "<b>Headline</b> one"}},
    {"id": "2", "time": "2026-10-19 09:31:00", "important": 0, "data": {"content": "美联储维持利率不变"}},
    {"id": "3", "time": "bad time", "important": 0, "data": {"content": "美国9月CPI预期"}},
    {"id": "4", "time": "2026-10-19 09:33:00", "important": 0, "data": {"content": "市场预期公布"}},
    {"id": "5", "time": "2026-10-19 09:34:00", "important": 0, "data": {"content": "plain flash"}},
    {"id": "6", "time": "2026-10-19 09:35:00", "important": 0, "data": {"content": "<br/>"}}
  ]
}`

func TestJin10_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "app", r.Header.Get("x-app-id"))
		assert.Equal(t, "-8200", r.URL.Query().Get("channel"))
		_, _ = w.Write([]byte(jin10Body))
	}))
	defer server.Close()

	now := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)
	j := NewJin10(testClient(), server.URL, "app", logger.NewNop())
	j.now = func() time.Time { return now }

	items, err := j.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 5) // empty content dropped

	assert.Equal(t, "Headline one", items[0].Content)
	assert.Equal(t, contracts.ImportanceHigh, items[0].Importance)
	assert.Equal(t, news.CategoryMacro, items[0].Category)
	assert.Empty(t, items[0].Ticker)
	// 09:30 CST is 01:30 UTC
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2026, 10, 19, 1, 30, 0, 0, time.UTC)))
	assert.Contains(t, items[0].RawData, `"id":"1"`)

	assert.Equal(t, contracts.ImportanceHigh, items[1].Importance)
	assert.Equal(t, contracts.ImportanceHigh, items[2].Importance)
	assert.True(t, items[2].PublishedAt.Equal(now))
	assert.Equal(t, contracts.ImportanceMedium, items[3].Importance)
	assert.Equal(t, contracts.ImportanceLow, items[4].Importance)
}

func TestJin10_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewJin10(testClient(), server.URL, "app", logger.NewNop()).Fetch(context.Background())
	assert.Error(t, err)
}

const finvizPage = `<html><body>
<table id="news-table">
  <tr>
    <td align="right">Oct-17-26 04:05PM</td>
    <td><div class="news-link-container">
      <div class="news-link-left"><a class="tab-link-news" href="https://example.com/a">NVDA earnings beat, guidance raised</a></div>
      <div class="news-link-right"><span>(Reuters)</span></div>
    </div></td>
  </tr>
  <tr>
    <td align="right">09:15AM</td>
    <td><a class="tab-link-news" href="https://example.com/b">Analyst raises price target on NVDA</a></td>
  </tr>
  <tr>
    <td align="right">Today 08:00AM</td>
    <td><a class="tab-link-news" href="https://example.com/c">Chip stocks drift</a></td>
  </tr>
  <tr><td colspan="2">ad</td></tr>
</table>
</body></html>`

func TestFinviz_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") != "NVDA" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(finvizPage))
	}))
	defer server.Close()

	f := NewFinviz(testClient(), server.URL+"/", []string{"nvda", "ZZZZ"}, logger.NewNop())
	f.loc = time.FixedZone("EDT", -4*60*60)
	f.now = func() time.Time { return time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC) }

	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "NVDA", items[0].Ticker)
	assert.Equal(t, news.CategoryStockNews, items[0].Category)
	assert.Equal(t, contracts.ImportanceHigh, items[0].Importance)
	assert.True(t, items[0].PublishedAt.Equal(time.Date(2026, 10, 17, 20, 5, 0, 0, time.UTC)))
	assert.Contains(t, items[0].RawData, "Reuters")

	// time-only row inherits Oct-17
	assert.True(t, items[1].PublishedAt.Equal(time.Date(2026, 10, 17, 13, 15, 0, 0, time.UTC)))
	assert.Equal(t, contracts.ImportanceMedium, items[1].Importance)

	assert.True(t, items[2].PublishedAt.Equal(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, contracts.ImportanceLow, items[2].Importance)
}

func TestFinviz_AllTickersFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFinviz(testClient(), server.URL, []string{"AAA"}, logger.NewNop()).Fetch(context.Background())
	assert.Error(t, err)
}

type stubScraper struct {
	name  string
	items []news.Item
	err   error
}

func (s stubScraper) Name() string { return s.name }

func (s stubScraper) Fetch(context.Context) ([]news.Item, error) { return s.items, s.err }

func TestDaemon_RunOnce(t *testing.T) {
	store, err := news.OpenSQLite(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	defer store.Close()

	now := time.Now().UTC()
	fresh := news.Item{Source: "jin10", Category: news.CategoryMacro, Title: "flash", PublishedAt: now, ScrapedAt: now, Importance: "low"}
	stale := news.Item{Source: "jin10", Category: news.CategoryMacro, Title: "stale", PublishedAt: now.AddDate(0, 0, -10), ScrapedAt: now, Importance: "low"}

	d := NewDaemon(store, []Scraper{
		stubScraper{name: "jin10", items: []news.Item{fresh, fresh, stale}},
		stubScraper{name: "finviz", err: errors.New("blocked")},
	}, 7, logger.NewNop())

	result, err := d.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Fetched["jin10"])
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, []string{"finviz"}, result.Failed)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 1, result.Total)
}

func TestHeadlineImportance(t *testing.T) {
	assert.Equal(t, contracts.ImportanceHigh, headlineImportance("SEC opens inquiry"))
	assert.Equal(t, contracts.ImportanceMedium, headlineImportance("Morgan Stanley downgrade"))
	assert.Equal(t, contracts.ImportanceLow, headlineImportance(strings.Repeat("x", 5)))
}
