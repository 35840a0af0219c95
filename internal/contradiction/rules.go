package contradiction

import "github.com/wonny/alpha-engine/backend/internal/contracts"

// Rule names one cross-category conflict worth flagging.
// Both signals must reach MinStrength for the pair to count.
type Rule struct {
	A           contracts.Category `json:"a" yaml:"a"`
	B           contracts.Category `json:"b" yaml:"b"`
	MinStrength float64            `json:"min_strength" yaml:"min_strength"`
	Label       string             `json:"label" yaml:"label"`
	Resolution  string             `json:"resolution" yaml:"resolution"`
}

// DefaultRules returns the canonical rule table in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		{
			A: contracts.CategoryInsider, B: contracts.CategoryValuation, MinStrength: 0.3,
			Label:      "smart_money_divergence",
			Resolution: "Insider activity is more predictive than analyst ratings",
		},
		{
			A: contracts.CategoryTechnical, B: contracts.CategoryValuation, MinStrength: 0.4,
			Label:      "technical_fundamental_divergence",
			Resolution: "Fundamentals tend to dominate over 3-6 months; technicals over 1-4 weeks",
		},
		{
			A: contracts.CategoryOptions, B: contracts.CategoryMomentum, MinStrength: 0.3,
			Label:      "flow_vs_trend",
			Resolution: "Options flow often leads momentum by 1-2 weeks",
		},
		{
			A: contracts.CategoryInsider, B: contracts.CategoryMomentum, MinStrength: 0.3,
			Label:      "insider_vs_market",
			Resolution: "Insiders have long-term edge; momentum can persist short-term",
		},
		{
			A: contracts.CategoryInsider, B: contracts.CategoryOptions, MinStrength: 0.3,
			Label:      "smart_money_vs_flow",
			Resolution: "Both are informed-trader signals; conflict suggests uncertainty",
		},
		{
			A: contracts.CategoryMacro, B: contracts.CategoryMomentum, MinStrength: 0.3,
			Label:      "macro_vs_micro",
			Resolution: "Macro headwinds eventually override single-stock momentum",
		},
		{
			A: contracts.CategoryEarnings, B: contracts.CategoryValuation, MinStrength: 0.3,
			Label:      "earnings_risk",
			Resolution: "Upcoming earnings can resolve valuation debates quickly",
		},
		{
			A: contracts.CategoryNewsSentiment, B: contracts.CategoryInsider, MinStrength: 0.3,
			Label:      "news_vs_insider",
			Resolution: "Positive news with insider selling suggests insiders know more than headlines",
		},
		{
			A: contracts.CategoryNewsSentiment, B: contracts.CategoryMomentum, MinStrength: 0.3,
			Label:      "news_vs_price",
			Resolution: "Positive news but declining price suggests market has already priced it in",
		},
	}
}
