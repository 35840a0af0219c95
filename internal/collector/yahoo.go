package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

const (
	historyBars = 30
	macroTTL    = 5 * time.Minute
)

// ErrNoData is returned when the chart API has no usable bars for a symbol
var ErrNoData = errors.New("no price data")

// Yahoo reads the Yahoo Finance chart, quote summary and options APIs
type Yahoo struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
	now     func() time.Time

	mu         sync.Mutex
	macro      *contracts.MacroData
	macroSPY   float64
	macroUntil time.Time
}

// NewYahoo creates a chart API client rooted at baseURL
func NewYahoo(client *httputil.Client, baseURL string, log *logger.Logger) *Yahoo {
	return &Yahoo{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
		now:     time.Now,
	}
}

// chartResponse mirrors the subset of /v8/finance/chart we read.
// Quote arrays contain nulls for halted sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// chart is a parsed chart response
type chart struct {
	Symbol  string
	Price   float64
	High52W float64
	Low52W  float64
	Bars    []contracts.PriceBar
}

func (c *chart) closes() []float64 {
	out := make([]float64, len(c.Bars))
	for i, b := range c.Bars {
		out[i] = b.Close
	}
	return out
}

// fetchChart downloads daily bars for symbol over rng (1y, 1mo, 10d ...)
func (y *Yahoo) fetchChart(ctx context.Context, symbol, rng string) (*chart, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d&includePrePost=false",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	var resp chartResponse
	if err := y.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s: %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
	}

	res := resp.Chart.Result[0]
	out := &chart{
		Symbol:  res.Meta.Symbol,
		Price:   res.Meta.RegularMarketPrice,
		High52W: res.Meta.FiftyTwoWeekHigh,
		Low52W:  res.Meta.FiftyTwoWeekLow,
	}

	if len(res.Indicators.Quote) > 0 {
		q := res.Indicators.Quote[0]
		for i, ts := range res.Timestamp {
			closePrice := at(q.Close, i)
			if closePrice == 0 {
				continue
			}
			out.Bars = append(out.Bars, contracts.PriceBar{
				Date:   time.Unix(ts, 0).UTC(),
				Open:   at(q.Open, i),
				High:   at(q.High, i),
				Low:    at(q.Low, i),
				Close:  closePrice,
				Volume: at(q.Volume, i),
			})
		}
	}

	if len(out.Bars) == 0 && out.Price == 0 {
		return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
	}
	return out, nil
}

func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}

// Stock builds price and technical inputs from one year of daily bars,
// then adds quote summary and option chain fields. Only the chart is
// required; the other sections degrade to zero values.
func (y *Yahoo) Stock(ctx context.Context, ticker string) (*contracts.StockData, error) {
	ch, err := y.fetchChart(ctx, ticker, "1y")
	if err != nil {
		return nil, err
	}

	closes := ch.closes()
	data := &contracts.StockData{
		Ticker:  ticker,
		Price:   ch.Price,
		History: lastN(ch.Bars, historyBars),
		MA50:    sma(closes, 50),
		MA200:   sma(closes, 200),
		RSI14:   wilderRSI(closes, rsiPeriod),
		High52W: ch.High52W,
		Low52W:  ch.Low52W,
	}
	if data.Price == 0 && len(closes) > 0 {
		data.Price = closes[len(closes)-1]
	}

	// Meta can omit the 52 week range on thin tickers
	if data.High52W == 0 || data.Low52W == 0 {
		for _, b := range ch.Bars {
			if b.High > data.High52W {
				data.High52W = b.High
			}
			if b.Low > 0 && (data.Low52W == 0 || b.Low < data.Low52W) {
				data.Low52W = b.Low
			}
		}
	}
	if data.High52W > 0 && data.Price > 0 {
		data.PctFromHigh52W = round((data.Price-data.High52W)/data.High52W*100, 2)
	}

	// the two sections write disjoint fields
	var g errgroup.Group
	g.Go(func() error {
		summary, err := y.fetchSummary(ctx, ticker)
		if err != nil {
			y.logger.WithError(err).ForTicker(ticker).Debug("Quote summary unavailable")
			return nil
		}
		y.applySummary(data, summary)
		return nil
	})
	g.Go(func() error {
		if err := y.applyOptions(ctx, data); err != nil {
			y.logger.WithError(err).ForTicker(ticker).Debug("Options unavailable")
		}
		return nil
	})
	_ = g.Wait()

	y.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"bars":     len(ch.Bars),
		"price":    data.Price,
		"sector":   data.Sector,
		"insiders": len(data.InsiderTransactions),
	}).Debug("Fetched stock data")

	return data, nil
}
