package contradiction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// Severity thresholds on 0.6*mean(strength) + 0.4*mean(confidence)
const (
	strengthWeight   = 0.6
	confidenceWeight = 0.4
	highThreshold    = 0.6
	mediumThreshold  = 0.4

	// Pairs where both sides are this thin on evidence are ignored
	minConfidence = 0.2
)

// Detector evaluates a rule table against one analysis's signals.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector; nil rules means DefaultRules()
func NewDetector(rules []Rule) *Detector {
	if rules == nil {
		rules = DefaultRules()
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Detector{rules: cp}
}

// Rules returns a copy of the rule table
func (d *Detector) Rules() []Rule {
	cp := make([]Rule, len(d.rules))
	copy(cp, d.rules)
	return cp
}

// Detect returns every rule-matched conflict, high severity first.
// Ties keep rule-table order. A signal that breaks the signal contract is
// rejected with an error wrapping contracts.ErrInvariant.
func (d *Detector) Detect(signals []contracts.Signal) ([]contracts.Contradiction, error) {
	byName := make(map[contracts.Category]contracts.Signal, len(signals))
	for _, s := range signals {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		byName[s.Name] = s // last one wins on duplicates
	}

	found := make([]contracts.Contradiction, 0)
	for _, rule := range d.rules {
		a, okA := byName[rule.A]
		b, okB := byName[rule.B]
		if !okA || !okB {
			continue
		}
		if !conflicts(rule, a, b) {
			continue
		}

		c := contracts.Contradiction{
			SignalA:              a,
			SignalB:              b,
			Severity:             ClassifySeverity(a, b),
			Category:             rule.Label,
			Description:          describe(a, b),
			HistoricalResolution: rule.Resolution,
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		found = append(found, c)
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Severity.Rank() < found[j].Severity.Rank()
	})

	return found, nil
}

func conflicts(rule Rule, a, b contracts.Signal) bool {
	if !a.Direction.Opposes(b.Direction) {
		return false
	}
	if a.Strength < rule.MinStrength || b.Strength < rule.MinStrength {
		return false
	}
	if a.Confidence < minConfidence && b.Confidence < minConfidence {
		return false
	}
	return true
}

// ClassifySeverity grades a conflicting pair
func ClassifySeverity(a, b contracts.Signal) contracts.Severity {
	score := SeverityScore(a, b)
	switch {
	case score >= highThreshold:
		return contracts.SeverityHigh
	case score >= mediumThreshold:
		return contracts.SeverityMedium
	default:
		return contracts.SeverityLow
	}
}

// SeverityScore is the weighted blend of mean strength and mean confidence
func SeverityScore(a, b contracts.Signal) float64 {
	combined := (a.Strength + b.Strength) / 2
	avgConf := (a.Confidence + b.Confidence) / 2
	return strengthWeight*combined + confidenceWeight*avgConf
}

func describe(a, b contracts.Signal) string {
	return fmt.Sprintf("%s says %s (%s) but %s says %s (%s)",
		strings.ToUpper(string(a.Name)), a.Direction, a.Reasoning,
		strings.ToUpper(string(b.Name)), b.Direction, b.Reasoning,
	)
}
