package consensus

import (
	"fmt"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// Above this consensus strength a one-sided verdict reads as a trend setup
const trendStrength = 0.7

// Interpret maps a score to one actionable sentence
func Interpret(score contracts.ConsensusScore) string {
	switch {
	case score.AlphaPotential == contracts.AlphaHigh && score.ContradictionSeverity == contracts.SeverityHigh:
		return "INTERPRETATION: High-conviction contradictions detected. " +
			"Smart money divergence suggests a potential turning point. " +
			"Monitor closely for resolution signal before taking position."
	case score.AlphaPotential == contracts.AlphaMedium:
		return "INTERPRETATION: Moderate contradictions detected. " +
			"Signals are split; wait for a catalyst (earnings, macro event) " +
			"to break the tie before entering."
	case (score.Direction == contracts.ConsensusBullish || score.Direction == contracts.ConsensusBearish) &&
		score.Strength > trendStrength:
		return fmt.Sprintf("INTERPRETATION: Strong %s consensus with no major contradictions. "+
			"Trend-following setup, consider %s exposure.", score.Direction, exposure(score.Direction))
	default:
		return "INTERPRETATION: No clear edge. Wait for stronger signal alignment."
	}
}

func exposure(d contracts.ConsensusDirection) string {
	if d == contracts.ConsensusBullish {
		return "long"
	}
	return "short"
}
