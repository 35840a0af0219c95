package signals

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	return5dLadder = ladder{
		gt(0.05, 0.5),
		gt(0.02, 0.3),
		gt(-0.02, 0.0),
		gt(-0.05, -0.3),
		always(-0.5),
	}

	return20dLadder = ladder{
		gt(0.10, 0.6),
		gt(0.03, 0.3),
		gt(-0.03, 0.0),
		gt(-0.10, -0.3),
		always(-0.6),
	}
)

// volumeRule scores a 5-day move against the 5d/20d volume ratio.
// Confirming volume strengthens the move; thin volume discounts or inverts it.
type volumeRule struct {
	label  string
	rising bool
	heavy  bool
	score  float64
}

var volumeRules = []volumeRule{
	{"bullish_confirmed", true, true, 0.4},
	{"bearish_confirmed", false, true, -0.4},
	{"bullish_weak", true, false, -0.1},
	{"bearish_weak", false, false, 0.1},
}

const (
	minMomentumBars  = 10
	fullMomentumBars = 20
	moveThreshold    = 0.01
	heavyVolumeRatio = 1.3
	thinVolumeRatio  = 0.7
)

func momentumRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryMomentum,
		title:    "Momentum",
		noData:   "Insufficient momentum data",
		input:    stockOf,
		gate:     func(d *contracts.StockData) bool { return len(d.History) >= minMomentumBars },
		presence: []presence[*contracts.StockData]{
			{0.4, func(d *contracts.StockData) bool { return true }},
			{0.3, func(d *contracts.StockData) bool { return len(d.History) >= fullMomentumBars }},
			{0.3, hasVolume},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scorePriceTrend,
			scoreVolumeConfirmation,
			scoreBeta,
		},
		details: momentumDetails,
	}
}

func hasVolume(d *contracts.StockData) bool {
	for _, bar := range d.History {
		if bar.Volume > 0 {
			return true
		}
	}
	return false
}

// trailingReturn compares the last close with the close n bars back
// (counting the last bar as the first).
func trailingReturn(history []contracts.PriceBar, n int) (float64, bool) {
	if len(history) < n || n < 1 {
		return 0, false
	}
	last := history[len(history)-1].Close
	base := history[len(history)-n].Close
	if base == 0 {
		return 0, false
	}
	return (last - base) / base, true
}

func scorePriceTrend(d *contracts.StockData, sh *sheet) {
	if ret, ok := trailingReturn(d.History, 5); ok {
		sh.set("return_5d_pct", round(ret*100, 2))
		return5dLadder.apply(sh, ret, 1, "")
	}
	if ret, ok := trailingReturn(d.History, 20); ok {
		sh.set("return_20d_pct", round(ret*100, 2))
		return20dLadder.apply(sh, ret, 1, "")
	}
}

func meanVolume(bars []contracts.PriceBar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}

func scoreVolumeConfirmation(d *contracts.StockData, sh *sheet) {
	n := len(d.History)
	if n < fullMomentumBars || !hasVolume(d) {
		return
	}
	avg20 := meanVolume(d.History[n-20:])
	if avg20 <= 0 {
		return
	}
	ratio := meanVolume(d.History[n-5:]) / avg20
	sh.set("volume_ratio_5d_vs_20d", round(ratio, 2))

	ret, ok := trailingReturn(d.History, 5)
	if !ok {
		return
	}

	var rising bool
	switch {
	case ret > moveThreshold:
		rising = true
	case ret < -moveThreshold:
		rising = false
	default:
		return
	}

	var heavy bool
	switch {
	case ratio > heavyVolumeRatio:
		heavy = true
	case ratio < thinVolumeRatio:
		heavy = false
	default:
		return
	}

	for _, rule := range volumeRules {
		if rule.rising == rising && rule.heavy == heavy {
			sh.set("volume_confirmation", rule.label)
			sh.add(rule.score)
			return
		}
	}
}

// scoreBeta records beta; high-beta names amplify moves but beta has no direction
func scoreBeta(d *contracts.StockData, sh *sheet) {
	if d.Beta <= 0 {
		return
	}
	sh.set("beta", round(d.Beta, 2))
}

func momentumDetails(_ *contracts.StockData, sh *sheet) []string {
	var parts []string
	if r, ok := sh.points["return_5d_pct"].(float64); ok {
		parts = append(parts, fmt.Sprintf("5d %+.1f%%", r))
	}
	if r, ok := sh.points["return_20d_pct"].(float64); ok {
		parts = append(parts, fmt.Sprintf("20d %+.1f%%", r))
	}
	if c, ok := sh.points["volume_confirmation"].(string); ok {
		parts = append(parts, "vol "+c)
	}
	return parts
}
