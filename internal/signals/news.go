package signals

import (
	"fmt"
	"math"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

var (
	tickerSentimentLadder = ladder{
		gt(0.3, 0.6),
		gt(0.1, 0.3),
		lt(-0.3, -0.6),
		lt(-0.1, -0.3),
	}

	// Scaled by the high-importance weight, then clamped to [-1, 1]
	macroSentimentLadder = ladder{
		gt(0.3, 0.5),
		gt(0.1, 0.25),
		lt(-0.3, -0.5),
		lt(-0.1, -0.25),
	}
)

const (
	highImportanceWeight = 2.0
	busyNewsVolume       = 50
	busyNewsScore        = 0.3
)

func newsOf(snap *contracts.Snapshot) (*contracts.NewsData, bool) {
	return snap.News, snap.News != nil
}

func newsRules() ruleSet[*contracts.NewsData] {
	return ruleSet[*contracts.NewsData]{
		category: contracts.CategoryNewsSentiment,
		title:    "News",
		noData:   "No news data available (news collector may not be running)",
		empty:    "no recent news",
		input:    newsOf,
		gate:     func(n *contracts.NewsData) bool { return n.Volume > 0 },
		presence: []presence[*contracts.NewsData]{
			{0.4, func(n *contracts.NewsData) bool { return true }},
			{0.2, func(n *contracts.NewsData) bool { return n.Volume >= 10 }},
			{0.2, func(n *contracts.NewsData) bool { return n.HighImportanceCount > 0 }},
			{0.2, func(n *contracts.NewsData) bool { return len(n.TickerNews) > 0 && len(n.MacroNews) > 0 }},
		},
		scorers: []func(*contracts.NewsData, *sheet){
			scoreTickerSentiment,
			scoreMacroSentiment,
			scoreNewsVolume,
		},
		details: newsDetails,
	}
}

func scoreTickerSentiment(n *contracts.NewsData, sh *sheet) {
	sh.set("ticker_sentiment", n.TickerSentiment)
	sh.set("ticker_news_count", len(n.TickerNews))
	tickerSentimentLadder.apply(sh, n.TickerSentiment, 1, "")
}

func scoreMacroSentiment(n *contracts.NewsData, sh *sheet) {
	sh.set("macro_sentiment", n.MacroSentiment)
	sh.set("macro_news_count", len(n.MacroNews))

	weight := 1.0
	if n.HighImportanceCount > 0 {
		weight = highImportanceWeight
	}
	if score, ok := macroSentimentLadder.grade(n.MacroSentiment); ok {
		sh.add(math.Max(-1, math.Min(score*weight, 1)))
	}
}

// scoreNewsVolume amplifies whichever way the combined sentiment leans
func scoreNewsVolume(n *contracts.NewsData, sh *sheet) {
	sh.set("news_volume", n.Volume)
	if n.Volume <= busyNewsVolume {
		return
	}
	combined := n.TickerSentiment + n.MacroSentiment
	if combined > 0 {
		sh.add(busyNewsScore)
	} else if combined < 0 {
		sh.add(-busyNewsScore)
	}
}

func newsDetails(n *contracts.NewsData, _ *sheet) []string {
	var parts []string
	if n.TickerSentiment != 0 {
		parts = append(parts, fmt.Sprintf("ticker_sentiment=%.2f", n.TickerSentiment))
	}
	if n.Volume > 0 {
		parts = append(parts, fmt.Sprintf("%d articles", n.Volume))
	}
	if c := len(n.TickerNews); c > 0 {
		parts = append(parts, fmt.Sprintf("%d ticker-specific", c))
	}
	if c := len(n.MacroNews); c > 0 {
		parts = append(parts, fmt.Sprintf("%d macro", c))
	}
	return parts
}
