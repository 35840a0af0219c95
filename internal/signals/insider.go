package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	// Share of classified transactions that are purchases
	buyRatioLadder = ladder{
		gt(0.6, 0.6),
		gt(0.3, 0.1),
	}
)

const (
	netBuyingScore = 0.7

	// Net selling is routine (compensation), so the base penalty is mild and
	// grows with shares sold per transaction.
	netSellingBase      = -0.3
	netSellingRange     = 0.4
	sellIntensityShares = 10000.0

	heavySellingScore   = -0.7 // buy ratio < 0.1 with at least 3 sales
	heavySellingMinimum = 3
	lightBuyingScore    = -0.4 // buy ratio < 0.2

	alignedOwnership      = 0.10
	alignedOwnershipScore = 0.2
)

func insiderRules() ruleSet[*contracts.StockData] {
	return ruleSet[*contracts.StockData]{
		category: contracts.CategoryInsider,
		title:    "Insider",
		noData:   "No insider transaction data available",
		empty:    "no recent transactions",
		input:    stockOf,
		presence: []presence[*contracts.StockData]{
			{0.5, func(d *contracts.StockData) bool { return len(d.InsiderTransactions) > 0 }},
			{0.2, func(d *contracts.StockData) bool { return len(d.InsiderTransactions) >= 5 }},
			{0.15, func(d *contracts.StockData) bool { return d.InsidersPctHeld > 0 }},
			{0.15, func(d *contracts.StockData) bool { return d.InstitutionsPctHeld > 0 }},
		},
		scorers: []func(*contracts.StockData, *sheet){
			scoreNetInsiderShares,
			scoreTransactionPattern,
			scoreOwnership,
		},
		details: insiderDetails,
	}
}

func scoreNetInsiderShares(d *contracts.StockData, sh *sheet) {
	sh.set("insider_net_shares", d.NetInsiderShares)
	if d.NetInsiderShares == 0 && len(d.InsiderTransactions) == 0 {
		return
	}

	switch {
	case d.NetInsiderShares > 0:
		sh.add(netBuyingScore)
	case d.NetInsiderShares < 0:
		txCount := math.Max(float64(len(d.InsiderTransactions)), 1)
		intensity := math.Min(math.Abs(d.NetInsiderShares)/txCount/sellIntensityShares, 1.0)
		sh.add(netSellingBase - netSellingRange*intensity)
	}
}

// classifyTransaction reads the filing text; purchases win over sales
func classifyTransaction(tx contracts.InsiderTransaction) (buy, sell bool) {
	text := strings.ToLower(tx.Text)
	if strings.Contains(text, "purchase") || strings.Contains(text, "buy") {
		return true, false
	}
	if strings.Contains(text, "sale") || strings.Contains(text, "sell") {
		return false, true
	}
	return false, false
}

func scoreTransactionPattern(d *contracts.StockData, sh *sheet) {
	if len(d.InsiderTransactions) == 0 {
		return
	}

	var buys, sells int
	for _, tx := range d.InsiderTransactions {
		buy, sell := classifyTransaction(tx)
		if buy {
			buys++
		} else if sell {
			sells++
		}
	}
	sh.set("insider_buys", buys)
	sh.set("insider_sells", sells)

	total := buys + sells
	if total == 0 {
		return
	}
	ratio := float64(buys) / float64(total)
	sh.set("insider_buy_ratio", round(ratio, 2))

	if score, ok := buyRatioLadder.grade(ratio); ok {
		sh.add(score)
		return
	}
	switch {
	case ratio < 0.1 && sells >= heavySellingMinimum:
		sh.add(heavySellingScore)
	case ratio < 0.2:
		sh.add(lightBuyingScore)
	}
}

func scoreOwnership(d *contracts.StockData, sh *sheet) {
	if d.InstitutionsPctHeld > 0 {
		sh.set("institutions_pct_held", round(d.InstitutionsPctHeld*100, 1))
	}
	if d.InsidersPctHeld > 0 {
		sh.set("insiders_pct_held", round(d.InsidersPctHeld*100, 1))
		if d.InsidersPctHeld > alignedOwnership {
			sh.add(alignedOwnershipScore)
		}
	}
}

func insiderDetails(d *contracts.StockData, sh *sheet) []string {
	var parts []string
	buys, _ := sh.points["insider_buys"].(int)
	sells, _ := sh.points["insider_sells"].(int)
	if buys > 0 || sells > 0 {
		parts = append(parts, fmt.Sprintf("%d buys, %d sells", buys, sells))
	}
	if d.NetInsiderShares > 0 {
		parts = append(parts, "net buying")
	} else if d.NetInsiderShares < 0 {
		parts = append(parts, "net selling")
	}
	return parts
}
