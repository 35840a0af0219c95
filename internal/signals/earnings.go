package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	// Days until the next report. The closest band adds a zero sub-score;
	// the others only label the event risk.
	eventRiskLadder = ladder{
		le(3, 0.0).tagged("very_high"),
		le(7, 0).tagged("high").quiet(),
		le(14, 0).tagged("moderate").quiet(),
		le(30, 0).tagged("low").quiet(),
	}
)

const (
	consistentBeatScore = 0.6 // every reported quarter beat, at least 3
	mostlyBeatScore     = 0.4
	mostlyMissScore     = -0.5
	netBeatScore        = 0.2
	netMissScore        = -0.2
	streakQuarters      = 3
)

func earningsRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryEarnings,
		title:    "Earnings",
		noData:   "No earnings data available",
		input:    stockOf,
		presence: []presence[*contracts.StockData]{
			// 0.3 for any history plus 0.1 per reported quarter, up to four
			{0.4, func(d *contracts.StockData) bool { return len(d.EarningsSurprises) >= 1 }},
			{0.1, func(d *contracts.StockData) bool { return len(d.EarningsSurprises) >= 2 }},
			{0.1, func(d *contracts.StockData) bool { return len(d.EarningsSurprises) >= 3 }},
			{0.1, func(d *contracts.StockData) bool { return len(d.EarningsSurprises) >= 4 }},
			{0.3, func(d *contracts.StockData) bool { return d.NextEarningsDate != nil }},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scoreSurpriseHistory,
			scoreEarningsProximity,
		},
		details: earningsDetails,
	}
}

func scoreSurpriseHistory(d *contracts.StockData, sh *sheet) {
	n := len(d.EarningsSurprises)
	if n == 0 {
		return
	}

	var beats, misses int
	var total float64
	for _, s := range d.EarningsSurprises {
		total += s.SurprisePct
		if s.SurprisePct > 0 {
			beats++
		} else if s.SurprisePct < 0 {
			misses++
		}
	}
	sh.set("earnings_beats", beats)
	sh.set("earnings_misses", misses)
	sh.set("avg_surprise_pct", round(total/float64(n), 2))

	switch {
	case beats == n && beats >= streakQuarters:
		sh.add(consistentBeatScore)
	case beats >= streakQuarters:
		sh.add(mostlyBeatScore)
	case misses >= streakQuarters:
		sh.add(mostlyMissScore)
	case beats > misses:
		sh.add(netBeatScore)
	case misses > beats:
		sh.add(netMissScore)
	}
}

func scoreEarningsProximity(d *contracts.StockData, sh *sheet) {
	if d.DaysToEarnings == nil {
		return
	}
	days := *d.DaysToEarnings
	sh.set("days_to_earnings", days)
	eventRiskLadder.apply(sh, float64(days), 1, "event_risk")
}

func earningsDetails(_ *contracts.StockData, sh *sheet) []string {
	var parts []string
	beats, _ := sh.points["earnings_beats"].(int)
	misses, _ := sh.points["earnings_misses"].(int)
	if total := beats + misses; total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d beats", beats, total))
	}
	if days, ok := sh.points["days_to_earnings"].(int); ok {
		parts = append(parts, fmt.Sprintf("earnings in %dd", days))
	}
	if risk, ok := sh.points["event_risk"].(string); ok {
		parts = append(parts, "event risk "+risk)
	}
	return parts
}
