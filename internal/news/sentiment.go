package news

import (
	"regexp"
	"sort"
	"strings"
)

var bullishKeywords = []string{
	"beat", "beats", "upgrade", "upgraded", "buy", "bullish",
	"outperform", "record", "growth", "surge", "rally",
	"breakout", "strong", "exceeded",
}

var bearishKeywords = []string{
	"miss", "missed", "downgrade", "downgraded", "sell", "bearish",
	"underperform", "risk", "decline", "drop", "crash",
	"weak", "warning", "cut",
}

var importanceWeights = map[string]float64{
	"high":   2.0,
	"medium": 1.0,
	"low":    0.5,
}

var (
	bullishRE = keywordPattern(bullishKeywords)
	bearishRE = keywordPattern(bearishKeywords)
)

func keywordPattern(words []string) *regexp.Regexp {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	for i, w := range sorted {
		sorted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(sorted, "|") + `)\b`)
}

// Sentiment scores items in [-1, 1] by whole-word keyword counts.
// Each item with at least one hit contributes (bull-bear)/(bull+bear),
// weighted by importance; items without hits are ignored.
func Sentiment(items []Item) float64 {
	var total, weights float64
	for _, item := range items {
		text := item.Title + " " + item.Content
		bull := len(bullishRE.FindAllStringIndex(text, -1))
		bear := len(bearishRE.FindAllStringIndex(text, -1))
		if bull+bear == 0 {
			continue
		}

		w, ok := importanceWeights[item.Importance]
		if !ok {
			w = 1.0
		}
		total += float64(bull-bear) / float64(bull+bear) * w
		weights += w
	}

	if weights == 0 {
		return 0
	}
	score := total / weights
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}
