package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	// Overbought readings lean bearish, oversold lean bullish
	rsiLadder = ladder{
		gt(80, -0.8),
		gt(70, -0.5),
		gt(55, 0.2),
		ge(45, 0.0),
		ge(30, -0.2),
		ge(20, 0.5),
		always(0.8),
	}

	// Price distance from the 50-day MA, as a fraction
	ma50Ladder = ladder{
		gt(0.10, 0.4),
		gt(0, 0.2),
		gt(-0.10, -0.2),
		always(-0.4),
	}

	ma200Ladder = ladder{
		gt(0.15, 0.5),
		gt(0, 0.3),
		gt(-0.15, -0.3),
		always(-0.5),
	}

	// Position inside the 52-week range, 0 = at the low, 1 = at the high
	range52wLadder = ladder{
		gt(0.95, -0.3),
		lt(0.2, 0.3),
	}
)

const crossScore = 0.3

func technicalRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryTechnical,
		title:    "Technical",
		noData:   "Insufficient technical data",
		input:    stockOf,
		presence: []presence[*contracts.StockData]{
			{0.4, func(d *contracts.StockData) bool { return len(d.History) >= 20 }},
			{0.2, func(d *contracts.StockData) bool { return d.RSI14 > 0 }},
			{0.2, func(d *contracts.StockData) bool { return d.MA50 > 0 }},
			{0.2, func(d *contracts.StockData) bool { return d.MA200 > 0 }},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scoreRSI,
			scoreMovingAverages,
			score52WeekPosition,
		},
		details: technicalDetails,
	}
}

func scoreRSI(d *contracts.StockData, sh *sheet) {
	if d.RSI14 <= 0 {
		return
	}
	sh.set("rsi_14", d.RSI14)
	rsiLadder.apply(sh, d.RSI14, 1, "")
}

func scoreMovingAverages(d *contracts.StockData, sh *sheet) {
	if d.Price <= 0 {
		return
	}

	if d.MA50 > 0 {
		pct := (d.Price - d.MA50) / d.MA50
		sh.set("pct_vs_50ma", round(pct*100, 1))
		ma50Ladder.apply(sh, pct, 1, "")
	}

	if d.MA200 > 0 {
		pct := (d.Price - d.MA200) / d.MA200
		sh.set("pct_vs_200ma", round(pct*100, 1))
		ma200Ladder.apply(sh, pct, 1, "")
	}

	if d.MA50 > 0 && d.MA200 > 0 {
		if d.MA50 > d.MA200 {
			sh.set("ma_cross", "golden")
			sh.add(crossScore)
		} else {
			sh.set("ma_cross", "death")
			sh.add(-crossScore)
		}
	}
}

func score52WeekPosition(d *contracts.StockData, sh *sheet) {
	if d.High52W <= 0 || d.Low52W <= 0 {
		return
	}
	span := d.High52W - d.Low52W
	if span <= 0 {
		return
	}
	position := (d.Price - d.Low52W) / span
	sh.set("52w_position_pct", round(position*100, 1))
	sh.set("pct_from_52w_high", round(d.PctFromHigh52W, 1))
	range52wLadder.apply(sh, position, 1, "")
}

func technicalDetails(d *contracts.StockData, _ *sheet) []string {
	var parts []string
	if d.RSI14 > 0 {
		parts = append(parts, fmt.Sprintf("RSI %.0f", d.RSI14))
	}
	if d.MA50 > 0 {
		parts = append(parts, aboveBelow(d.Price, d.MA50)+" 50MA")
	}
	if d.MA200 > 0 {
		parts = append(parts, aboveBelow(d.Price, d.MA200)+" 200MA")
	}
	return parts
}

func aboveBelow(price, level float64) string {
	if price > level {
		return "above"
	}
	return "below"
}
