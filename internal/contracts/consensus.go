package contracts

// ConsensusDirection is the net verdict across all signals
type ConsensusDirection string

const (
	ConsensusBullish ConsensusDirection = "bullish"
	ConsensusBearish ConsensusDirection = "bearish"
	ConsensusMixed   ConsensusDirection = "mixed"
	ConsensusNeutral ConsensusDirection = "neutral"
)

// AlphaPotential rates how actionable the contradiction set is
type AlphaPotential string

const (
	AlphaNone   AlphaPotential = "none"
	AlphaLow    AlphaPotential = "low"
	AlphaMedium AlphaPotential = "medium"
	AlphaHigh   AlphaPotential = "high"
)

// SignalSummary is the compact per-signal view kept in the score
type SignalSummary struct {
	Direction  Direction `json:"direction"`
	Strength   float64   `json:"strength"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// ConsensusScore is recomputed from scratch on every scoring call
type ConsensusScore struct {
	Direction             ConsensusDirection         `json:"direction"`
	Strength              float64                    `json:"strength"`
	BullishCount          int                        `json:"bullish_count"`
	BearishCount          int                        `json:"bearish_count"`
	NeutralCount          int                        `json:"neutral_count"`
	ContradictionCount    int                        `json:"contradiction_count"`
	ContradictionSeverity Severity                   `json:"contradiction_severity"`
	AlphaPotential        AlphaPotential             `json:"alpha_potential"`
	KeyContradictions     []string                   `json:"key_contradictions"`
	SignalSummary         map[Category]SignalSummary `json:"signal_summary"`
}

// Actionable reports whether the score is worth surfacing as an idea
func (c ConsensusScore) Actionable() bool {
	return c.AlphaPotential == AlphaHigh || c.AlphaPotential == AlphaMedium
}
