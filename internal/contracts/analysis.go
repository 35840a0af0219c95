package contracts

import "time"

// Analysis is the full result of one engine run for one ticker.
// It holds plain values only and is safe to serialize or hand to a renderer.
type Analysis struct {
	Ticker         string          `json:"ticker"`
	AsOf           time.Time       `json:"as_of"`
	Price          float64         `json:"price,omitempty"`
	Signals        []Signal        `json:"signals"`
	Contradictions []Contradiction `json:"contradictions"`
	Score          ConsensusScore  `json:"score"`
	Interpretation string          `json:"interpretation"`
	RulesHash      string          `json:"rules_hash,omitempty"`
}

// Signal returns the signal for a category, if present
func (a *Analysis) Signal(name Category) (Signal, bool) {
	for _, s := range a.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}
