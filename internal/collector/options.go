package collector

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const optionExpirations = 3

type optionContract struct {
	Strike            float64 `json:"strike"`
	OpenInterest      float64 `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

type optionChain struct {
	ExpirationDate int64            `json:"expirationDate"`
	Calls          []optionContract `json:"calls"`
	Puts           []optionContract `json:"puts"`
}

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64       `json:"expirationDates"`
			Options         []optionChain `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

// fetchOptions returns the expiration list and the chain for one expiry.
// A zero expiry asks for the nearest.
func (y *Yahoo) fetchOptions(ctx context.Context, symbol string, expiry int64) ([]int64, *optionChain, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/options/%s", y.baseURL, url.PathEscape(symbol))
	if expiry != 0 {
		endpoint += fmt.Sprintf("?date=%d", expiry)
	}

	var resp optionsResponse
	if err := y.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, nil, fmt.Errorf("fetch options %s: %w", symbol, err)
	}
	if e := resp.OptionChain.Error; e != nil {
		return nil, nil, fmt.Errorf("options %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
		return nil, nil, fmt.Errorf("options %s: %w", symbol, ErrNoData)
	}
	res := resp.OptionChain.Result[0]
	return res.ExpirationDates, &res.Options[0], nil
}

// applyOptions aggregates open interest over the nearest expirations and
// averages the at-the-money implied volatility per side.
func (y *Yahoo) applyOptions(ctx context.Context, data *contracts.StockData) error {
	expirations, first, err := y.fetchOptions(ctx, data.Ticker, 0)
	if err != nil {
		return err
	}

	chains := []*optionChain{first}
	for i := 1; i < len(expirations) && i < optionExpirations; i++ {
		_, ch, err := y.fetchOptions(ctx, data.Ticker, expirations[i])
		if err != nil {
			y.logger.WithError(err).WithField("expiry", expirations[i]).Debug("Option chain unavailable")
			continue
		}
		chains = append(chains, ch)
	}

	var callOI, putOI float64
	var callIVs, putIVs []float64
	for _, ch := range chains {
		callOI += sumOpenInterest(ch.Calls)
		putOI += sumOpenInterest(ch.Puts)
		if data.Price <= 0 || len(ch.Calls) == 0 || len(ch.Puts) == 0 {
			continue
		}
		if iv := atmIV(ch.Calls, data.Price); iv > 0 {
			callIVs = append(callIVs, iv)
		}
		if iv := atmIV(ch.Puts, data.Price); iv > 0 {
			putIVs = append(putIVs, iv)
		}
	}

	if callOI > 0 {
		data.PutCallRatio = round(putOI/callOI, 4)
	}
	data.CallIV = round(mean(callIVs), 4)
	data.PutIV = round(mean(putIVs), 4)
	data.IVSkew = round(data.PutIV-data.CallIV, 4)
	return nil
}

func sumOpenInterest(cs []optionContract) float64 {
	var total float64
	for _, c := range cs {
		total += c.OpenInterest
	}
	return total
}

// atmIV is the implied volatility at the strike closest to price
func atmIV(cs []optionContract, price float64) float64 {
	best, bestDist := 0, math.Inf(1)
	for i, c := range cs {
		if d := math.Abs(c.Strike - price); d < bestDist {
			best, bestDist = i, d
		}
	}
	return cs[best].ImpliedVolatility
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
