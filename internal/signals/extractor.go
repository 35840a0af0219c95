package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// Extractor reduces a market snapshot to one category's Signal.
// Implementations are pure: no I/O, no shared state.
type Extractor interface {
	Category() contracts.Category
	Extract(snap *contracts.Snapshot) contracts.Signal
}

// Aggregation constants shared by every category
const (
	deadZone    = 0.1
	maxStrength = 1.0
	maxConf     = 1.0
)

// sheet collects sub-scores and diagnostic data points during one extraction
type sheet struct {
	scores []float64
	points map[string]interface{}
}

func newSheet() *sheet {
	return &sheet{points: make(map[string]interface{})}
}

func (s *sheet) add(score float64) {
	s.scores = append(s.scores, score)
}

func (s *sheet) set(key string, value interface{}) {
	s.points[key] = value
}

func (s *sheet) has(key string) bool {
	_, ok := s.points[key]
	return ok
}

func (s *sheet) mean() float64 {
	if len(s.scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.scores {
		sum += v
	}
	return sum / float64(len(s.scores))
}

// presence is one weighted data-completeness check
type presence[T any] struct {
	weight float64
	ok     func(T) bool
}

// ruleSet is the table-driven extractor every category is built from
type ruleSet[T any] struct {
	category contracts.Category
	title    string // "Technical", "Valuation", ...
	noData   string
	empty    string // detail used when nothing notable was recorded

	// input selects the category's data from a snapshot
	input func(*contracts.Snapshot) (T, bool)
	// gate forces zero confidence when it returns false (optional)
	gate     func(T) bool
	presence []presence[T]
	scorers  []func(T, *sheet)
	details  func(T, *sheet) []string
}

func (r ruleSet[T]) Category() contracts.Category {
	return r.category
}

func (r ruleSet[T]) Extract(snap *contracts.Snapshot) contracts.Signal {
	if snap == nil {
		return contracts.NeutralSignal(r.category, r.noData)
	}
	in, ok := r.input(snap)
	if !ok {
		return contracts.NeutralSignal(r.category, r.noData)
	}

	sh := newSheet()
	confidence := r.confidence(in)
	for _, score := range r.scorers {
		score(in, sh)
	}

	return r.aggregate(in, sh, confidence)
}

func (r ruleSet[T]) confidence(in T) float64 {
	if r.gate != nil && !r.gate(in) {
		return 0
	}
	var c float64
	for _, p := range r.presence {
		if p.ok(in) {
			c += p.weight
		}
	}
	return math.Min(c, maxConf)
}

// aggregate applies the dead zone and strength clamp. With no sub-scores, or
// no supporting data at all, the result is the neutral no-data signal.
func (r ruleSet[T]) aggregate(in T, sh *sheet, confidence float64) contracts.Signal {
	confidence = round(confidence, 2)
	if len(sh.scores) == 0 || confidence == 0 {
		sig := contracts.NeutralSignal(r.category, r.noData)
		sig.DataPoints = sh.points
		return sig
	}

	avg := sh.mean()
	direction := contracts.Neutral
	if avg > deadZone {
		direction = contracts.Bullish
	} else if avg < -deadZone {
		direction = contracts.Bearish
	}

	return contracts.Signal{
		Name:       r.category,
		Direction:  direction,
		Strength:   round(math.Min(math.Abs(avg), maxStrength), 2),
		Confidence: confidence,
		DataPoints: sh.points,
		Reasoning:  r.reasoning(in, sh, direction),
	}
}

func (r ruleSet[T]) reasoning(in T, sh *sheet, direction contracts.Direction) string {
	var parts []string
	if r.details != nil {
		parts = r.details(in, sh)
	}
	detail := strings.Join(parts, ", ")
	if detail == "" {
		detail = r.empty
		if detail == "" {
			detail = "limited data"
		}
	}
	return fmt.Sprintf("%s %s: %s", r.title, direction, detail)
}

// Failed is the substitute signal for an extractor that faulted
func Failed(category contracts.Category, cause interface{}) contracts.Signal {
	return contracts.NeutralSignal(category, fmt.Sprintf("Extraction failed: %v", cause))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func stockOf(snap *contracts.Snapshot) (*contracts.StockData, bool) {
	return snap.Stock, snap.Stock != nil
}
