package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// eventWindowDays is how close earnings must be to warn about them
const eventWindowDays = 14

// Dashboard columns, in priority order; at most maxKeyData per signal
var keyFields = []string{
	"rsi_14", "ma_cross", "pct_vs_50ma",
	"pe_used", "analyst_upside_pct",
	"insider_buys", "insider_sells",
	"put_call_ratio", "iv_regime",
	"return_5d_pct", "volume_confirmation",
	"vix", "vix_regime", "sector_vs_spy",
	"earnings_beats", "days_to_earnings", "event_risk",
	"ticker_sentiment", "macro_sentiment", "news_volume",
}

const maxKeyData = 3

var severityMarker = map[contracts.Severity]string{
	contracts.SeverityHigh:   "!!!",
	contracts.SeverityMedium: "!!",
	contracts.SeverityLow:    "!",
}

// title builds a fresh Caser per call; Casers are stateful
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Markdown renders the analysis as a report with a header, signal
// dashboard, contradictions and a verdict
func Markdown(a *contracts.Analysis) string {
	sections := []string{
		header(a),
		dashboard(a.Signals),
		contradictions(a.Contradictions),
		verdict(a),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func header(a *contracts.Analysis) string {
	return fmt.Sprintf("# %s Contradiction Analysis Report\n**Date**: %s | **Price**: $%.2f",
		strings.ToUpper(a.Ticker), a.AsOf.Format("2006-01-02"), a.Price)
}

func dashboard(signals []contracts.Signal) string {
	lines := []string{
		"## Signal Dashboard",
		"| Signal | Direction | Strength | Confidence | Key Data |",
		"|--------|-----------|----------|------------|----------|",
	}
	for _, s := range signals {
		lines = append(lines, fmt.Sprintf("| %s | %s | %.1f | %.1f | %s |",
			displayName(string(s.Name)), strings.ToUpper(string(s.Direction)),
			s.Strength, s.Confidence, keyData(s)))
	}
	return strings.Join(lines, "\n")
}

func contradictions(cs []contracts.Contradiction) string {
	if len(cs) == 0 {
		return "## Contradictions Detected (0)\nNo significant contradictions found. Signals are largely aligned."
	}

	lines := []string{fmt.Sprintf("## Contradictions Detected (%d)", len(cs))}
	for i, c := range cs {
		lines = append(lines,
			fmt.Sprintf("### %d. %s vs %s (%s Severity) %s", i+1,
				strings.ToUpper(string(c.SignalA.Name)), strings.ToUpper(string(c.SignalB.Name)),
				title(string(c.Severity)), severityMarker[c.Severity]),
			fmt.Sprintf("- **%s**: %s", displayName(string(c.SignalA.Name)), c.SignalA.Reasoning),
			fmt.Sprintf("- **%s**: %s", displayName(string(c.SignalB.Name)), c.SignalB.Reasoning),
			fmt.Sprintf("- **Historical**: %s", c.HistoricalResolution),
			fmt.Sprintf("- **Category**: %s", c.Category),
			"",
		)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func verdict(a *contracts.Analysis) string {
	s := a.Score
	lines := []string{
		"## Verdict",
		fmt.Sprintf("- **Consensus**: %s (strength %.2f), %d bullish, %d bearish, %d neutral",
			strings.ToUpper(string(s.Direction)), s.Strength, s.BullishCount, s.BearishCount, s.NeutralCount),
		fmt.Sprintf("- **Contradictions**: %d (severity: %s)", s.ContradictionCount, s.ContradictionSeverity),
		fmt.Sprintf("- **Alpha potential**: %s", strings.ToUpper(string(s.AlphaPotential))),
	}

	if len(s.KeyContradictions) > 0 {
		lines = append(lines, "- **Key risks**:")
		for _, kc := range s.KeyContradictions {
			lines = append(lines, "  - "+kc)
		}
	}

	if days, ok := daysToEarnings(a); ok && days <= eventWindowDays {
		lines = append(lines, fmt.Sprintf(
			"- **Event warning**: Earnings in %d days, may resolve or amplify contradictions", days))
	}

	return strings.Join(lines, "\n")
}

// daysToEarnings reads the earnings signal. Values decoded from JSON
// arrive as float64.
func daysToEarnings(a *contracts.Analysis) (int, bool) {
	s, ok := a.Signal(contracts.CategoryEarnings)
	if !ok {
		return 0, false
	}
	switch v := s.DataPoints["days_to_earnings"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func keyData(s contracts.Signal) string {
	var parts []string
	for _, key := range keyFields {
		v, ok := s.DataPoints[key]
		if !ok {
			continue
		}
		if f, isFloat := v.(float64); isFloat {
			parts = append(parts, fmt.Sprintf("%s=%.1f", key, f))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
		if len(parts) >= maxKeyData {
			break
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// displayName turns insider_activity into Insider Activity
func displayName(name string) string {
	return title(strings.ReplaceAll(name, "_", " "))
}
