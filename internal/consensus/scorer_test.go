package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

func sig(name contracts.Category, dir contracts.Direction, strength, conf float64) contracts.Signal {
	return contracts.Signal{Name: name, Direction: dir, Strength: strength, Confidence: conf}
}

func contra(sev contracts.Severity, desc string) contracts.Contradiction {
	return contracts.Contradiction{Severity: sev, Description: desc}
}

func TestScore_AllNeutral(t *testing.T) {
	var signals []contracts.Signal
	for _, c := range contracts.AllCategories() {
		signals = append(signals, contracts.NeutralSignal(c, "no data"))
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.ConsensusNeutral, got.Direction)
	assert.Zero(t, got.Strength)
	assert.Equal(t, contracts.AlphaNone, got.AlphaPotential)
	assert.Equal(t, contracts.SeverityNone, got.ContradictionSeverity)
	assert.Zero(t, got.NeutralCount) // zero-confidence signals are not counted
	assert.Len(t, got.SignalSummary, 8)
	assert.Empty(t, got.KeyContradictions)
}

func TestScore_Bullish(t *testing.T) {
	// bull weight 0.9, bear weight 0.2
	signals := []contracts.Signal{
		sig(contracts.CategoryTechnical, contracts.Bullish, 0.9, 1.0),
		sig(contracts.CategoryMacro, contracts.Bearish, 0.4, 0.5),
		sig(contracts.CategoryOptions, contracts.Neutral, 0.05, 0.7),
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.ConsensusBullish, got.Direction)
	assert.Equal(t, 0.82, got.Strength) // 0.9 / 1.101
	assert.Equal(t, 1, got.BullishCount)
	assert.Equal(t, 1, got.BearishCount)
	assert.Equal(t, 1, got.NeutralCount)
}

func TestScore_Bearish(t *testing.T) {
	signals := []contracts.Signal{
		sig(contracts.CategoryValuation, contracts.Bearish, 0.8, 0.8),
		sig(contracts.CategoryInsider, contracts.Bearish, 0.5, 1.0),
		sig(contracts.CategoryMomentum, contracts.Bullish, 0.3, 0.4),
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.ConsensusBearish, got.Direction)
	assert.Equal(t, 0.9, got.Strength) // 1.14 / 1.261
}

func TestScore_Mixed(t *testing.T) {
	signals := []contracts.Signal{
		sig(contracts.CategoryTechnical, contracts.Bullish, 0.5, 0.8), // 0.40
		sig(contracts.CategoryValuation, contracts.Bearish, 0.6, 0.6), // 0.36
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.ConsensusMixed, got.Direction)
	assert.Equal(t, 0.95, got.Strength) // 1 - 0.04/0.761
}

func TestScore_MarginBoundaryIsMixed(t *testing.T) {
	// bull exactly 1.3x bear is not dominant
	signals := []contracts.Signal{
		sig(contracts.CategoryTechnical, contracts.Bullish, 0.65, 1.0),
		sig(contracts.CategoryValuation, contracts.Bearish, 0.5, 1.0),
	}

	got := Score(signals, nil)
	assert.Equal(t, contracts.ConsensusMixed, got.Direction)
}

func TestScore_StrengthRoundedBeforeInterpretation(t *testing.T) {
	// 0.7011 / 1.001 = 0.7004, which would read as a trend setup unrounded
	signals := []contracts.Signal{
		sig(contracts.CategoryTechnical, contracts.Bullish, 0.7011, 1.0),
		sig(contracts.CategoryValuation, contracts.Bearish, 0.2989, 1.0),
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.ConsensusBullish, got.Direction)
	assert.Equal(t, 0.7, got.Strength)
	assert.Equal(t, "INTERPRETATION: No clear edge. Wait for stronger signal alignment.", Interpret(got))
}

func TestScore_SummaryKeepsReasoning(t *testing.T) {
	insider := sig(contracts.CategoryInsider, contracts.Bearish, 0.6, 0.8)
	insider.Reasoning = "Insider bearish: net selling 120000 shares"
	signals := []contracts.Signal{
		insider,
		contracts.NeutralSignal(contracts.CategoryOptions, "No options data available"),
	}

	got := Score(signals, nil)

	assert.Equal(t, contracts.SignalSummary{
		Direction:  contracts.Bearish,
		Strength:   0.6,
		Confidence: 0.8,
		Reasoning:  "Insider bearish: net selling 120000 shares",
	}, got.SignalSummary[contracts.CategoryInsider])
	assert.Equal(t, "No options data available", got.SignalSummary[contracts.CategoryOptions].Reasoning)
}

func TestScore_ContradictionSummary(t *testing.T) {
	contradictions := []contracts.Contradiction{
		contra(contracts.SeverityHigh, "first"),
		contra(contracts.SeverityMedium, "second"),
		contra(contracts.SeverityMedium, "third"),
		contra(contracts.SeverityLow, "fourth"),
	}

	got := Score(nil, contradictions)

	assert.Equal(t, 4, got.ContradictionCount)
	assert.Equal(t, contracts.SeverityHigh, got.ContradictionSeverity)
	assert.Equal(t, contracts.AlphaHigh, got.AlphaPotential)
	assert.Equal(t, []string{"first", "second", "third"}, got.KeyContradictions)
}

func TestScore_Pure(t *testing.T) {
	signals := []contracts.Signal{
		sig(contracts.CategoryTechnical, contracts.Bullish, 0.5, 0.8),
		sig(contracts.CategoryValuation, contracts.Bearish, 0.6, 0.6),
	}
	contradictions := []contracts.Contradiction{contra(contracts.SeverityMedium, "x")}

	assert.Equal(t, Score(signals, contradictions), Score(signals, contradictions))
}

func TestOverallSeverity(t *testing.T) {
	assert.Equal(t, contracts.SeverityNone, OverallSeverity(nil))
	assert.Equal(t, contracts.SeverityLow, OverallSeverity([]contracts.Contradiction{contra(contracts.SeverityLow, "")}))
	assert.Equal(t, contracts.SeverityMedium, OverallSeverity([]contracts.Contradiction{
		contra(contracts.SeverityLow, ""), contra(contracts.SeverityMedium, ""),
	}))
}

func TestAlphaPotential(t *testing.T) {
	tests := []struct {
		name                string
		total, high, medium int
		want                contracts.AlphaPotential
	}{
		{"two highs", 2, 2, 0, contracts.AlphaHigh},
		{"two highs among many", 7, 2, 0, contracts.AlphaHigh},
		{"one high two medium", 3, 1, 2, contracts.AlphaHigh},
		{"one high", 1, 1, 0, contracts.AlphaMedium},
		{"two medium", 2, 0, 2, contracts.AlphaMedium},
		{"three low", 3, 0, 0, contracts.AlphaMedium},
		{"one medium", 1, 0, 1, contracts.AlphaLow},
		{"two low", 2, 0, 0, contracts.AlphaLow},
		{"none", 0, 0, 0, contracts.AlphaNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AlphaPotential(tt.total, tt.high, tt.medium))
		})
	}
}
