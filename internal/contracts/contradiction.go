package contracts

import "fmt"

// Severity grades how intense a detected conflict is
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityNone   Severity = "none" // only used for the overall summary
)

// Rank orders severities for sorting (high first)
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// Contradiction is a pairwise conflict between two opposing signals
type Contradiction struct {
	SignalA              Signal   `json:"signal_a"`
	SignalB              Signal   `json:"signal_b"`
	Severity             Severity `json:"severity"`
	Category             string   `json:"category"` // rule label, e.g. smart_money_divergence
	Description          string   `json:"description"`
	HistoricalResolution string   `json:"historical_resolution"`
}

// Validate rejects contradictions that do not join two opposite calls
func (c Contradiction) Validate() error {
	if !c.SignalA.Direction.Opposes(c.SignalB.Direction) {
		return fmt.Errorf("%w: contradiction %s joins %s/%s", ErrInvariant, c.Category, c.SignalA.Direction, c.SignalB.Direction)
	}
	switch c.Severity {
	case SeverityHigh, SeverityMedium, SeverityLow:
	default:
		return fmt.Errorf("%w: contradiction %s has severity %q", ErrInvariant, c.Category, c.Severity)
	}
	return nil
}
