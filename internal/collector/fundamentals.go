package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const (
	insiderLookback  = 180 * 24 * time.Hour
	surpriseQuarters = 4
)

var summaryModules = strings.Join([]string{
	"defaultKeyStatistics",
	"financialData",
	"summaryDetail",
	"summaryProfile",
	"insiderTransactions",
	"majorHoldersBreakdown",
	"earningsHistory",
	"calendarEvents",
}, ",")

// rawValue is Yahoo's {"raw": 1.5, "fmt": "1.50"} number wrapper. Missing
// values come back as {}.
type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummary `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummary struct {
	DefaultKeyStatistics struct {
		ForwardPE               rawValue `json:"forwardPE"`
		PriceToBook             rawValue `json:"priceToBook"`
		EnterpriseToEbitda      rawValue `json:"enterpriseToEbitda"`
		Beta                    rawValue `json:"beta"`
		HeldPercentInsiders     rawValue `json:"heldPercentInsiders"`
		HeldPercentInstitutions rawValue `json:"heldPercentInstitutions"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		TargetMeanPrice         rawValue `json:"targetMeanPrice"`
		NumberOfAnalystOpinions rawValue `json:"numberOfAnalystOpinions"`
	} `json:"financialData"`
	SummaryDetail struct {
		TrailingPE rawValue `json:"trailingPE"`
		ForwardPE  rawValue `json:"forwardPE"`
		Beta       rawValue `json:"beta"`
	} `json:"summaryDetail"`
	SummaryProfile struct {
		Sector string `json:"sector"`
	} `json:"summaryProfile"`
	InsiderTransactions struct {
		Transactions []struct {
			FilerName       string   `json:"filerName"`
			TransactionText string   `json:"transactionText"`
			Shares          rawValue `json:"shares"`
			Value           rawValue `json:"value"`
			StartDate       rawValue `json:"startDate"`
		} `json:"transactions"`
	} `json:"insiderTransactions"`
	MajorHoldersBreakdown struct {
		InsidersPercentHeld     rawValue `json:"insidersPercentHeld"`
		InstitutionsPercentHeld rawValue `json:"institutionsPercentHeld"`
	} `json:"majorHoldersBreakdown"`
	EarningsHistory struct {
		History []struct {
			Quarter         rawValue `json:"quarter"`
			EPSEstimate     rawValue `json:"epsEstimate"`
			EPSActual       rawValue `json:"epsActual"`
			SurprisePercent rawValue `json:"surprisePercent"` // fraction
		} `json:"history"`
	} `json:"earningsHistory"`
	CalendarEvents struct {
		Earnings struct {
			EarningsDate []rawValue `json:"earningsDate"`
		} `json:"earnings"`
	} `json:"calendarEvents"`
}

func (y *Yahoo) fetchSummary(ctx context.Context, symbol string) (*quoteSummary, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(summaryModules))

	var resp quoteSummaryResponse
	if err := y.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("fetch quote summary %s: %w", symbol, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("quote summary %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote summary %s: %w", symbol, ErrNoData)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// applySummary copies valuation, analyst, ownership, insider and earnings
// fields onto data. Chart-derived fields are left alone.
func (y *Yahoo) applySummary(data *contracts.StockData, s *quoteSummary) {
	ks, sd := s.DefaultKeyStatistics, s.SummaryDetail

	data.Sector = s.SummaryProfile.Sector
	data.TrailingPE = round(sd.TrailingPE.Raw, 2)
	data.ForwardPE = round(firstNonZero(ks.ForwardPE.Raw, sd.ForwardPE.Raw), 2)
	data.PriceToBook = round(ks.PriceToBook.Raw, 2)
	data.EVToEBITDA = round(ks.EnterpriseToEbitda.Raw, 2)
	data.Beta = round(firstNonZero(ks.Beta.Raw, sd.Beta.Raw), 3)
	data.TargetMeanPrice = round(s.FinancialData.TargetMeanPrice.Raw, 2)
	data.AnalystCount = int(s.FinancialData.NumberOfAnalystOpinions.Raw)

	mh := s.MajorHoldersBreakdown
	data.InsidersPctHeld = firstNonZero(mh.InsidersPercentHeld.Raw, ks.HeldPercentInsiders.Raw)
	data.InstitutionsPctHeld = firstNonZero(mh.InstitutionsPercentHeld.Raw, ks.HeldPercentInstitutions.Raw)

	y.applyInsiders(data, s)
	y.applyEarnings(data, s)
}

// applyInsiders keeps trades from the lookback window. Net shares count
// every reported trade: sales subtract, purchases add, grants and
// exercises are ignored.
func (y *Yahoo) applyInsiders(data *contracts.StockData, s *quoteSummary) {
	since := y.now().Add(-insiderLookback)

	var net float64
	for _, tx := range s.InsiderTransactions.Transactions {
		text := strings.ToLower(tx.TransactionText)
		switch {
		case strings.Contains(text, "sale") || strings.Contains(text, "sell"):
			net -= tx.Shares.Raw
		case strings.Contains(text, "purchase") || strings.Contains(text, "buy"):
			net += tx.Shares.Raw
		}

		date := time.Unix(int64(tx.StartDate.Raw), 0).UTC()
		if tx.StartDate.Raw == 0 || date.Before(since) {
			continue
		}
		data.InsiderTransactions = append(data.InsiderTransactions, contracts.InsiderTransaction{
			Insider: tx.FilerName,
			Text:    tx.TransactionText,
			Shares:  tx.Shares.Raw,
			Value:   tx.Value.Raw,
			Date:    date,
		})
	}
	data.NetInsiderShares = net
}

func (y *Yahoo) applyEarnings(data *contracts.StockData, s *quoteSummary) {
	history := s.EarningsHistory.History
	if len(history) > surpriseQuarters {
		history = history[len(history)-surpriseQuarters:]
	}
	for _, h := range history {
		data.EarningsSurprises = append(data.EarningsSurprises, contracts.EarningsSurprise{
			Date:        time.Unix(int64(h.Quarter.Raw), 0).UTC(),
			EPSEstimate: h.EPSEstimate.Raw,
			EPSActual:   h.EPSActual.Raw,
			SurprisePct: round(h.SurprisePercent.Raw*100, 2),
		})
	}

	dates := s.CalendarEvents.Earnings.EarningsDate
	if len(dates) == 0 || dates[0].Raw == 0 {
		return
	}
	next := truncateDay(time.Unix(int64(dates[0].Raw), 0).UTC())
	days := int(next.Sub(truncateDay(y.now().UTC())).Hours() / 24)
	data.NextEarningsDate = &next
	data.DaysToEarnings = &days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
