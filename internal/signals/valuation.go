package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	// Forward / trailing P/E; a contraction implies expected earnings growth
	peContractionLadder = ladder{
		lt(0.7, 0.4),
		lt(0.9, 0.2),
	}

	// Sector-agnostic absolute P/E bands
	peLadder = ladder{
		gt(60, -0.6),
		gt(40, -0.3),
		gt(25, 0.0),
		gt(15, 0.2),
		always(0.4),
	}

	// Analyst target upside as a fraction of price, before coverage weighting
	upsideLadder = ladder{
		gt(0.30, 0.7),
		gt(0.15, 0.4),
		gt(0.05, 0.2),
		gt(-0.10, 0.0),
		gt(-0.20, -0.3),
		always(-0.6),
	}

	pbLadder = ladder{
		gt(15, -0.3),
		gt(8, -0.1),
		lt(1.5, 0.3),
	}

	evEbitdaLadder = ladder{
		gt(30, -0.3),
		gt(20, -0.1),
		lt(10, 0.3),
	}
)

const (
	// Below this many covering analysts the target is discounted
	minAnalystCoverage = 10
	thinCoverageWeight = 0.6
)

func valuationRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryValuation,
		title:    "Valuation",
		noData:   "Insufficient valuation data",
		input:    stockOf,
		presence: []presence[*contracts.StockData]{
			{0.3, func(d *contracts.StockData) bool { return d.TrailingPE > 0 || d.ForwardPE > 0 }},
			{0.3, func(d *contracts.StockData) bool { return d.TargetMeanPrice > 0 }},
			{0.2, func(d *contracts.StockData) bool { return d.PriceToBook > 0 }},
			{0.2, func(d *contracts.StockData) bool { return d.EVToEBITDA > 0 }},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scorePE,
			scoreAnalystTarget,
			scorePriceToBook,
			scoreEVToEBITDA,
		},
		details: valuationDetails,
	}
}

func scorePE(d *contracts.StockData, sh *sheet) {
	pe, kind := d.ForwardPE, "forward"
	if pe <= 0 {
		pe, kind = d.TrailingPE, "trailing"
	}
	if pe <= 0 {
		return
	}
	sh.set("pe_used", round(pe, 1))
	sh.set("pe_type", kind)

	if d.ForwardPE > 0 && d.TrailingPE > 0 {
		ratio := d.ForwardPE / d.TrailingPE
		sh.set("pe_fwd_vs_trail", round(ratio, 2))
		peContractionLadder.apply(sh, ratio, 1, "")
	}

	peLadder.apply(sh, pe, 1, "")
}

func scoreAnalystTarget(d *contracts.StockData, sh *sheet) {
	if d.TargetMeanPrice <= 0 || d.Price <= 0 {
		return
	}
	upside := (d.TargetMeanPrice - d.Price) / d.Price
	sh.set("analyst_target_mean", d.TargetMeanPrice)
	sh.set("analyst_upside_pct", round(upside*100, 1))
	sh.set("analyst_count", d.AnalystCount)

	weight := 1.0
	if d.AnalystCount < minAnalystCoverage {
		weight = thinCoverageWeight
	}
	upsideLadder.apply(sh, upside, weight, "")
}

func scorePriceToBook(d *contracts.StockData, sh *sheet) {
	if d.PriceToBook <= 0 {
		return
	}
	sh.set("pb", round(d.PriceToBook, 2))
	pbLadder.apply(sh, d.PriceToBook, 1, "")
}

func scoreEVToEBITDA(d *contracts.StockData, sh *sheet) {
	if d.EVToEBITDA <= 0 {
		return
	}
	sh.set("ev_ebitda", round(d.EVToEBITDA, 1))
	evEbitdaLadder.apply(sh, d.EVToEBITDA, 1, "")
}

func valuationDetails(_ *contracts.StockData, sh *sheet) []string {
	var parts []string
	if pe, ok := sh.points["pe_used"].(float64); ok {
		parts = append(parts, fmt.Sprintf("PE %.0f", pe))
	}
	if upside, ok := sh.points["analyst_upside_pct"].(float64); ok {
		parts = append(parts, fmt.Sprintf("analyst target %+.0f%%", upside))
	}
	return parts
}
