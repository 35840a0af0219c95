package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	vixLadder = ladder{
		gt(30, -0.6).tagged("fear"),
		gt(20, -0.2).tagged("elevated"),
		lt(13, 0.3).tagged("complacent"),
		always(0).tagged("normal").quiet(),
	}

	// Five-day VIX change in percent
	vixTrendLadder = ladder{
		gt(20, -0.4),
		lt(-15, 0.3),
	}

	// 10Y minus 2Y, in percentage points
	curveLadder = ladder{
		lt(-0.5, -0.5).tagged("deeply_inverted"),
		lt(0, -0.3).tagged("inverted"),
		gt(1.0, 0.2).tagged("steep"),
		always(0).tagged("normal").quiet(),
	}

	// Sector 1m return minus SPY 1m return, in percentage points
	sectorVsSPYLadder = ladder{
		gt(3, 0.4),
		gt(1, 0.2),
		lt(-3, -0.4),
		lt(-1, -0.2),
	}

	// Cyclical average minus defensive average, in percentage points
	rotationLadder = ladder{
		gt(3, 0.3),
		lt(-3, -0.3),
	}

	defensiveSectors = []string{"XLU", "XLP", "XLV"}
	cyclicalSectors  = []string{"XLK", "XLY", "XLI", "XLF"}
)

func macroOf(snap *contracts.Snapshot) (*contracts.MacroData, bool) {
	return snap.Macro, snap.Macro != nil
}

func macroRules() ruleSet[*contracts.MacroData] {
	return ruleSet[*contracts.MacroData]{
		category: contracts.CategoryMacro,
		title:    "Macro",
		noData:   "Insufficient macro data",
		input:    macroOf,
		presence: []presence[*contracts.MacroData]{
			{0.3, func(m *contracts.MacroData) bool { return m.VIX > 0 }},
			{0.2, func(m *contracts.MacroData) bool { return m.Treasury10Y > 0 }},
			{0.3, func(m *contracts.MacroData) bool { return len(m.SectorReturns) > 0 }},
			{0.1, func(m *contracts.MacroData) bool { return m.Gold > 0 }},
			{0.1, func(m *contracts.MacroData) bool { return m.Oil > 0 }},
		},
		scorers: []func(*contracts.MacroData, *sheet){
			scoreVIX,
			scoreYieldCurve,
			scoreSectorRotation,
		},
		details: macroDetails,
	}
}

func scoreVIX(m *contracts.MacroData, sh *sheet) {
	if m.VIX <= 0 {
		return
	}
	sh.set("vix", round(m.VIX, 1))
	sh.set("vix_5d_change", round(m.VIXChange5D, 1))
	vixLadder.apply(sh, m.VIX, 1, "vix_regime")
	vixTrendLadder.apply(sh, m.VIXChange5D, 1, "")
}

func scoreYieldCurve(m *contracts.MacroData, sh *sheet) {
	if m.Treasury10Y <= 0 {
		return
	}
	sh.set("treasury_10y", round(m.Treasury10Y, 2))

	spread, ok := m.YieldSpread()
	if !ok {
		return
	}
	sh.set("treasury_2y", round(m.Treasury2Y, 2))
	sh.set("yield_spread_10y2y", round(spread, 2))
	curveLadder.apply(sh, spread, 1, "yield_curve")
}

func scoreSectorRotation(m *contracts.MacroData, sh *sheet) {
	if len(m.SectorReturns) == 0 {
		return
	}
	rounded := make(map[string]float64, len(m.SectorReturns))
	for k, v := range m.SectorReturns {
		rounded[k] = round(v, 2)
	}
	sh.set("sector_returns_1m", rounded)

	if m.StockSector != "" && m.SectorVsSPY != 0 {
		sh.set("stock_sector", m.StockSector)
		sh.set("sector_vs_spy", round(m.SectorVsSPY, 2))
		sectorVsSPYLadder.apply(sh, m.SectorVsSPY, 1, "")
	}

	def, okDef := averageReturn(m.SectorReturns, defensiveSectors)
	cyc, okCyc := averageReturn(m.SectorReturns, cyclicalSectors)
	if okDef && okCyc {
		rotation := cyc - def
		sh.set("cyclical_vs_defensive", round(rotation, 2))
		rotationLadder.apply(sh, rotation, 1, "")
	}
}

func averageReturn(returns map[string]float64, symbols []string) (float64, bool) {
	var sum float64
	var n int
	for _, s := range symbols {
		if v, ok := returns[s]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func macroDetails(_ *contracts.MacroData, sh *sheet) []string {
	var parts []string
	if vix, ok := sh.points["vix"].(float64); ok {
		parts = append(parts, fmt.Sprintf("VIX %.0f", vix))
	}
	if regime, ok := sh.points["vix_regime"].(string); ok {
		parts = append(parts, regime)
	}
	if curve, ok := sh.points["yield_curve"].(string); ok {
		parts = append(parts, "curve "+curve)
	}
	if rel, ok := sh.points["sector_vs_spy"].(float64); ok {
		parts = append(parts, fmt.Sprintf("sector vs SPY %+.1f%%", rel))
	}
	return parts
}
