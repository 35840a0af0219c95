package consensus

import (
	"math"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

const (
	// One side must outweigh the other by this factor to call a direction
	dominanceMargin = 1.3
	epsilon         = 0.001

	keyContradictionLimit = 3
)

// Score aggregates signals and the detector's output into one verdict.
// It is a pure function of its inputs. Contradictions are expected in the
// detector's severity order; the first three become key contradictions.
func Score(signals []contracts.Signal, contradictions []contracts.Contradiction) contracts.ConsensusScore {
	score := contracts.ConsensusScore{
		KeyContradictions: make([]string, 0, keyContradictionLimit),
		SignalSummary:     make(map[contracts.Category]contracts.SignalSummary, len(signals)),
	}

	var bullWeight, bearWeight float64
	for _, s := range signals {
		score.SignalSummary[s.Name] = contracts.SignalSummary{
			Direction:  s.Direction,
			Strength:   s.Strength,
			Confidence: s.Confidence,
			Reasoning:  s.Reasoning,
		}
		if s.Confidence <= 0 {
			continue
		}
		switch s.Direction {
		case contracts.Bullish:
			score.BullishCount++
			bullWeight += s.Strength * s.Confidence
		case contracts.Bearish:
			score.BearishCount++
			bearWeight += s.Strength * s.Confidence
		default:
			score.NeutralCount++
		}
	}

	score.Direction, score.Strength = decide(bullWeight, bearWeight)

	var high, medium int
	for _, c := range contradictions {
		switch c.Severity {
		case contracts.SeverityHigh:
			high++
		case contracts.SeverityMedium:
			medium++
		}
	}
	score.ContradictionCount = len(contradictions)
	score.ContradictionSeverity = OverallSeverity(contradictions)
	score.AlphaPotential = AlphaPotential(len(contradictions), high, medium)

	for i, c := range contradictions {
		if i == keyContradictionLimit {
			break
		}
		score.KeyContradictions = append(score.KeyContradictions, c.Description)
	}

	return score
}

// decide applies the dominance rule. Close contests are "mixed", with a
// strength that grows as the two sides approach each other. Strength is
// rounded to two places before anything compares it.
func decide(bull, bear float64) (contracts.ConsensusDirection, float64) {
	total := bull + bear
	switch {
	case total == 0:
		return contracts.ConsensusNeutral, 0
	case bull > dominanceMargin*bear:
		return contracts.ConsensusBullish, round2(bull / (total + epsilon))
	case bear > dominanceMargin*bull:
		return contracts.ConsensusBearish, round2(bear / (total + epsilon))
	default:
		return contracts.ConsensusMixed, round2(1 - math.Abs(bull-bear)/(total+epsilon))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// OverallSeverity returns the highest severity present, or none
func OverallSeverity(contradictions []contracts.Contradiction) contracts.Severity {
	overall := contracts.SeverityNone
	for _, c := range contradictions {
		if c.Severity.Rank() < overall.Rank() {
			overall = c.Severity
		}
	}
	return overall
}

// AlphaPotential rates how actionable a contradiction set is
func AlphaPotential(total, high, medium int) contracts.AlphaPotential {
	switch {
	case high >= 2 || (high >= 1 && medium >= 2):
		return contracts.AlphaHigh
	case high >= 1 || medium >= 2 || total >= 3:
		return contracts.AlphaMedium
	case total >= 1:
		return contracts.AlphaLow
	default:
		return contracts.AlphaNone
	}
}
