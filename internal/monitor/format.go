package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const (
	ruleWidth         = 60
	maxContradictionW = 120
	stampLayout       = "2006-01-02 15:04 MST"
)

// CST is the display zone of the scan log (UTC+8)
var CST = time.FixedZone("CST", 8*60*60)

// IsIdea reports whether an analysis has enough alpha to act on
func IsIdea(a *contracts.Analysis) bool {
	return a.Score.Actionable()
}

// Stamp formats a scan time for the log
func Stamp(t time.Time) string {
	return t.In(CST).Format(stampLayout)
}

// StatusLine is the one-line per-ticker scan summary
func StatusLine(a *contracts.Analysis) string {
	return fmt.Sprintf("%s: %s str=%.2f alpha=%s",
		a.Ticker, strings.ToUpper(string(a.Score.Direction)), a.Score.Strength, a.Score.AlphaPotential)
}

// FormatIdea renders the trading idea block written to the scan log
func FormatIdea(a *contracts.Analysis, scanTime time.Time) string {
	rule := strings.Repeat("=", ruleWidth)
	score := a.Score

	var b strings.Builder
	lines := []string{
		rule,
		fmt.Sprintf("TRADING IDEA: %s  |  %s", a.Ticker, Stamp(scanTime)),
		rule,
		fmt.Sprintf("Direction: %s (strength=%.2f)", strings.ToUpper(string(score.Direction)), score.Strength),
		fmt.Sprintf("Alpha Potential: %s", strings.ToUpper(string(score.AlphaPotential))),
		fmt.Sprintf("Contradictions: %d (%s)", score.ContradictionCount, score.ContradictionSeverity),
		"",
		"Signals:",
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, name := range contracts.AllCategories() {
		s, ok := score.SignalSummary[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-20s %-8s str=%.2f  conf=%.2f\n",
			name, strings.ToUpper(string(s.Direction)), s.Strength, s.Confidence)
	}

	if len(score.KeyContradictions) > 0 {
		b.WriteString("\nKey Contradictions:\n")
		for _, kc := range score.KeyContradictions {
			fmt.Fprintf(&b, "  -> %s\n", truncateRunes(kc, maxContradictionW))
		}
	}

	b.WriteByte('\n')
	b.WriteString(a.Interpretation)
	b.WriteByte('\n')
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
