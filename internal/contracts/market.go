package contracts

import "time"

// Snapshot bundles everything collected for one ticker at one point in time.
// Any part may be nil; extractors degrade to a neutral signal.
type Snapshot struct {
	Ticker string     `json:"ticker" yaml:"ticker"`
	AsOf   time.Time  `json:"as_of" yaml:"as_of"`
	Stock  *StockData `json:"stock,omitempty" yaml:"stock,omitempty"`
	Macro  *MacroData `json:"macro,omitempty" yaml:"macro,omitempty"`
	News   *NewsData  `json:"news,omitempty" yaml:"news,omitempty"`
}

// PriceBar is one daily OHLCV row, oldest first in a history slice
type PriceBar struct {
	Date   time.Time `json:"date" yaml:"date"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// InsiderTransaction is one reported insider trade
type InsiderTransaction struct {
	Insider string    `json:"insider" yaml:"insider"`
	Text    string    `json:"text" yaml:"text"` // e.g. "Sale at price 120.50 per share."
	Shares  float64   `json:"shares" yaml:"shares"`
	Value   float64   `json:"value" yaml:"value"`
	Date    time.Time `json:"date" yaml:"date"`
}

// EarningsSurprise is one reported quarter against consensus
type EarningsSurprise struct {
	Date        time.Time `json:"date" yaml:"date"`
	EPSEstimate float64   `json:"eps_estimate" yaml:"eps_estimate"`
	EPSActual   float64   `json:"eps_actual" yaml:"eps_actual"`
	SurprisePct float64   `json:"surprise_pct" yaml:"surprise_pct"`
}

// StockData holds per-ticker price, fundamental, insider, options and
// earnings inputs. Zero values mean "not available".
type StockData struct {
	Ticker string `json:"ticker" yaml:"ticker"`
	Sector string `json:"sector,omitempty" yaml:"sector,omitempty"`

	// Price & technicals
	Price          float64    `json:"price" yaml:"price"`
	MA50           float64    `json:"ma_50" yaml:"ma_50"`
	MA200          float64    `json:"ma_200" yaml:"ma_200"`
	RSI14          float64    `json:"rsi_14" yaml:"rsi_14"`
	High52W        float64    `json:"high_52w" yaml:"high_52w"`
	Low52W         float64    `json:"low_52w" yaml:"low_52w"`
	PctFromHigh52W float64    `json:"pct_from_52w_high" yaml:"pct_from_52w_high"`
	Beta           float64    `json:"beta" yaml:"beta"`
	History        []PriceBar `json:"history,omitempty" yaml:"history,omitempty"`

	// Valuation
	TrailingPE      float64 `json:"trailing_pe" yaml:"trailing_pe"`
	ForwardPE       float64 `json:"forward_pe" yaml:"forward_pe"`
	PriceToBook     float64 `json:"price_to_book" yaml:"price_to_book"`
	EVToEBITDA      float64 `json:"ev_to_ebitda" yaml:"ev_to_ebitda"`
	TargetMeanPrice float64 `json:"target_mean_price" yaml:"target_mean_price"`
	AnalystCount    int     `json:"analyst_count" yaml:"analyst_count"`

	// Insider activity
	InsiderTransactions []InsiderTransaction `json:"insider_transactions,omitempty" yaml:"insider_transactions,omitempty"`
	NetInsiderShares    float64              `json:"net_insider_shares" yaml:"net_insider_shares"`
	InsidersPctHeld     float64              `json:"insiders_pct_held" yaml:"insiders_pct_held"`         // fraction, 0.05 = 5%
	InstitutionsPctHeld float64              `json:"institutions_pct_held" yaml:"institutions_pct_held"` // fraction

	// Options (nearest expiry, ATM)
	PutCallRatio float64 `json:"put_call_ratio" yaml:"put_call_ratio"` // open interest based
	CallIV       float64 `json:"call_iv" yaml:"call_iv"`
	PutIV        float64 `json:"put_iv" yaml:"put_iv"`
	IVSkew       float64 `json:"iv_skew" yaml:"iv_skew"` // put IV - call IV

	// Earnings
	EarningsSurprises []EarningsSurprise `json:"earnings_surprises,omitempty" yaml:"earnings_surprises,omitempty"`
	NextEarningsDate  *time.Time         `json:"next_earnings_date,omitempty" yaml:"next_earnings_date,omitempty"`
	DaysToEarnings    *int               `json:"days_to_earnings,omitempty" yaml:"days_to_earnings,omitempty"`
}

// MacroData holds market-wide context shared by every ticker in a scan
type MacroData struct {
	VIX         float64 `json:"vix" yaml:"vix"`
	VIXChange5D float64 `json:"vix_5d_change" yaml:"vix_5d_change"` // percent
	Treasury10Y float64 `json:"treasury_10y" yaml:"treasury_10y"`
	Treasury2Y  float64 `json:"treasury_2y" yaml:"treasury_2y"`
	Gold        float64 `json:"gold" yaml:"gold"`
	Oil         float64 `json:"oil" yaml:"oil"`
	Dollar      float64 `json:"dollar" yaml:"dollar"`
	SPYReturn1M float64 `json:"spy_1m_return" yaml:"spy_1m_return"` // percent
	StockSector string  `json:"stock_sector,omitempty" yaml:"stock_sector,omitempty"`
	SectorVsSPY float64 `json:"sector_vs_spy" yaml:"sector_vs_spy"` // percentage points

	// Sector ETF 1-month returns in percent, keyed by ETF symbol (XLK, XLU, ...)
	SectorReturns map[string]float64 `json:"sector_returns,omitempty" yaml:"sector_returns,omitempty"`
}

// YieldSpread returns 10Y minus 2Y, or false when either leg is missing
func (m *MacroData) YieldSpread() (float64, bool) {
	if m.Treasury10Y <= 0 || m.Treasury2Y <= 0 {
		return 0, false
	}
	return m.Treasury10Y - m.Treasury2Y, true
}

// Importance levels attached to news items by scrapers
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// NewsItem is one scraped headline
type NewsItem struct {
	ID          int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Source      string    `json:"source" yaml:"source"`
	Category    string    `json:"category" yaml:"category"` // macro, stock_news, kol, options_anomaly
	Title       string    `json:"title" yaml:"title"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
	Ticker      string    `json:"ticker,omitempty" yaml:"ticker,omitempty"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	ScrapedAt   time.Time `json:"scraped_at" yaml:"scraped_at"`
	Importance  string    `json:"importance" yaml:"importance"`
	RawData     string    `json:"raw_data,omitempty" yaml:"raw_data,omitempty"`
}

// NewsData is the news-derived input for one ticker
type NewsData struct {
	TickerNews          []NewsItem `json:"ticker_news,omitempty" yaml:"ticker_news,omitempty"`
	MacroNews           []NewsItem `json:"macro_news,omitempty" yaml:"macro_news,omitempty"`
	TickerSentiment     float64    `json:"ticker_sentiment" yaml:"ticker_sentiment"` // -1.0 ~ 1.0
	MacroSentiment      float64    `json:"macro_sentiment" yaml:"macro_sentiment"`   // -1.0 ~ 1.0
	Volume              int        `json:"volume" yaml:"volume"`
	HighImportanceCount int        `json:"high_importance_count" yaml:"high_importance_count"`
}
