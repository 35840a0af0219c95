package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	// Put/call open interest; call-heavy positioning is bullish
	putCallLadder = ladder{
		lt(0.5, 0.6),
		lt(0.7, 0.3),
		lt(1.0, 0.0),
		lt(1.3, -0.3),
		always(-0.6),
	}

	// Put IV minus call IV; expensive puts mean hedging demand
	skewLadder = ladder{
		gt(0.10, -0.5),
		gt(0.03, -0.2),
		lt(-0.05, 0.3),
		always(0.0),
	}

	// Average ATM IV. Not directional, recorded for context only.
	ivRegimeLadder = ladder{
		gt(0.80, 0).tagged("extreme").quiet(),
		gt(0.50, 0).tagged("high").quiet(),
		gt(0.25, 0).tagged("normal").quiet(),
		always(0).tagged("low").quiet(),
	}
)

func optionsRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryOptions,
		title:    "Options",
		noData:   "No options data available",
		input:    stockOf,
		presence: []presence[*contracts.StockData]{
			{0.4, func(d *contracts.StockData) bool { return d.PutCallRatio > 0 }},
			{0.3, func(d *contracts.StockData) bool { return d.CallIV > 0 }},
			{0.3, func(d *contracts.StockData) bool { return d.PutIV > 0 }},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scorePutCallRatio,
			scoreIVSkew,
			scoreIVLevel,
		},
		details: optionsDetails,
	}
}

func scorePutCallRatio(d *contracts.StockData, sh *sheet) {
	if d.PutCallRatio <= 0 {
		return
	}
	sh.set("put_call_ratio", round(d.PutCallRatio, 2))
	putCallLadder.apply(sh, d.PutCallRatio, 1, "")
}

func scoreIVSkew(d *contracts.StockData, sh *sheet) {
	if d.IVSkew == 0 && d.CallIV <= 0 {
		return
	}
	sh.set("iv_skew", round(d.IVSkew, 4))
	skewLadder.apply(sh, d.IVSkew, 1, "")
}

func scoreIVLevel(d *contracts.StockData, sh *sheet) {
	var sum float64
	var n int
	if d.CallIV > 0 {
		sum += d.CallIV
		n++
		sh.set("atm_call_iv", round(d.CallIV, 4))
	}
	if d.PutIV > 0 {
		sum += d.PutIV
		n++
		sh.set("atm_put_iv", round(d.PutIV, 4))
	}
	if n == 0 {
		return
	}
	avg := sum / float64(n)
	sh.set("avg_iv", round(avg, 4))
	ivRegimeLadder.apply(sh, avg, 1, "iv_regime")
}

func optionsDetails(_ *contracts.StockData, sh *sheet) []string {
	var parts []string
	if pcr, ok := sh.points["put_call_ratio"].(float64); ok {
		parts = append(parts, fmt.Sprintf("P/C %.2f", pcr))
	}
	if regime, ok := sh.points["iv_regime"].(string); ok {
		parts = append(parts, "IV "+regime)
	}
	if skew, ok := sh.points["iv_skew"].(float64); ok {
		parts = append(parts, fmt.Sprintf("skew %+.2f", skew))
	}
	return parts
}
