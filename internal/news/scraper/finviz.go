package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

const (
	finvizSource      = "finviz"
	finvizMaxPerQuote = 30
)

var finvizHighKeywords = []string{"earnings", "guidance", "sec ", "investigation", "acquire", "acquisition", "merger"}

var finvizMediumKeywords = []string{"upgrade", "downgrade", "price target", "analyst", "rating"}

// Finviz scrapes the quote-page news table of each watched ticker
type Finviz struct {
	client  *httputil.Client
	baseURL string
	tickers []string
	loc     *time.Location
	logger  *logger.Logger
	now     func() time.Time
}

// NewFinviz creates a Finviz scraper for tickers
func NewFinviz(client *httputil.Client, baseURL string, tickers []string, log *logger.Logger) *Finviz {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("ET", -5*60*60)
	}
	return &Finviz{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		tickers: tickers,
		loc:     loc,
		logger:  log,
		now:     time.Now,
	}
}

// Name implements Scraper
func (f *Finviz) Name() string { return finvizSource }

// Fetch scrapes every ticker. A failing ticker is logged and skipped; the
// call only fails when every ticker failed.
func (f *Finviz) Fetch(ctx context.Context) ([]news.Item, error) {
	var items []news.Item
	var lastErr error
	failed := 0

	for _, ticker := range f.tickers {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		got, err := f.fetchTicker(ctx, ticker)
		if err != nil {
			failed++
			lastErr = err
			f.logger.WithError(err).ForTicker(ticker).Warn("Finviz scrape failed")
			continue
		}
		items = append(items, got...)
	}

	if failed > 0 && failed == len(f.tickers) {
		return nil, fmt.Errorf("finviz: all %d tickers failed: %w", failed, lastErr)
	}
	return items, nil
}

func (f *Finviz) fetchTicker(ctx context.Context, ticker string) ([]news.Item, error) {
	ticker = strings.ToUpper(ticker)
	body, err := f.client.GetBody(ctx, fmt.Sprintf("%s/quote.ashx?t=%s", f.baseURL, url.QueryEscape(ticker)))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return f.parseNewsTable(doc, ticker), nil
}

// parseNewsTable reads rows of #news-table. A row whose date cell holds only
// a time shares the date of the row above it.
func (f *Finviz) parseNewsTable(doc *goquery.Document, ticker string) []news.Item {
	now := f.now().In(f.loc)
	scraped := now.UTC()
	currentDay := now

	var items []news.Item
	doc.Find("#news-table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(items) >= finvizMaxPerQuote {
			return false
		}

		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}

		link := cells.Eq(1).Find("a.tab-link-news").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}

		published, day := f.parseStamp(strings.TrimSpace(cells.Eq(0).Text()), currentDay, now)
		currentDay = day

		href, _ := link.Attr("href")
		publisher := strings.Trim(strings.TrimSpace(cells.Eq(1).Find(".news-link-right span").First().Text()), "()")
		raw, _ := json.Marshal(map[string]string{"url": href, "publisher": publisher})

		items = append(items, news.Item{
			Source:      finvizSource,
			Category:    news.CategoryStockNews,
			Title:       truncateRunes(title, titleMaxRunes),
			Content:     title,
			Ticker:      ticker,
			PublishedAt: published.UTC(),
			ScrapedAt:   scraped,
			Importance:  headlineImportance(title),
			RawData:     string(raw),
		})
		return true
	})

	return items
}

// parseStamp handles "Oct-18-26 09:30AM", "Today 09:30AM" and "09:30AM"
func (f *Finviz) parseStamp(stamp string, currentDay, now time.Time) (time.Time, time.Time) {
	fields := strings.Fields(stamp)
	day := currentDay
	clock := stamp

	if len(fields) == 2 {
		clock = fields[1]
		if fields[0] == "Today" {
			day = now
		} else if d, err := time.ParseInLocation("Jan-02-06", fields[0], f.loc); err == nil {
			day = d
		}
	}

	t, err := time.ParseInLocation("03:04PM", clock, f.loc)
	if err != nil {
		return now, day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, f.loc), day
}

func headlineImportance(title string) string {
	lower := strings.ToLower(title) + " "
	if containsAny(lower, finvizHighKeywords) {
		return contracts.ImportanceHigh
	}
	if containsAny(lower, finvizMediumKeywords) {
		return contracts.ImportanceMedium
	}
	return contracts.ImportanceLow
}
