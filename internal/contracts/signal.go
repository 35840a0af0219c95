package contracts

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a value that breaks a contract the engine relies on.
// Seeing it means a logic bug upstream, never bad market data.
var ErrInvariant = errors.New("invariant violation")

// Category identifies the evidence family a Signal summarizes
type Category string

const (
	CategoryTechnical     Category = "technical"
	CategoryValuation     Category = "valuation"
	CategoryInsider       Category = "insider_activity"
	CategoryEarnings      Category = "earnings"
	CategoryOptions       Category = "options"
	CategoryMomentum      Category = "momentum"
	CategoryMacro         Category = "macro"
	CategoryNewsSentiment Category = "news_sentiment"
)

// AllCategories returns the categories in canonical extraction order
func AllCategories() []Category {
	return []Category{
		CategoryTechnical,
		CategoryValuation,
		CategoryInsider,
		CategoryEarnings,
		CategoryOptions,
		CategoryMomentum,
		CategoryMacro,
		CategoryNewsSentiment,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Direction is the directional call of a Signal
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Valid reports whether d is bullish, bearish or neutral
func (d Direction) Valid() bool {
	return d == Bullish || d == Bearish || d == Neutral
}

// Opposes reports whether d and other are strictly opposite calls
func (d Direction) Opposes(other Direction) bool {
	return (d == Bullish && other == Bearish) || (d == Bearish && other == Bullish)
}

// Signal is one category's directional summary for a single analysis run.
// Strength and confidence are independent: a reading can be extreme but thin
// on data, or near-neutral and well supported.
type Signal struct {
	Name       Category               `json:"name" yaml:"name"`
	Direction  Direction              `json:"direction" yaml:"direction"`
	Strength   float64                `json:"strength" yaml:"strength"`     // 0.0 ~ 1.0
	Confidence float64                `json:"confidence" yaml:"confidence"` // 0.0 ~ 1.0
	DataPoints map[string]interface{} `json:"data_points" yaml:"data_points"`
	Reasoning  string                 `json:"reasoning" yaml:"reasoning"`
}

// NeutralSignal builds the zero-confidence signal used whenever a category
// has nothing usable to say.
func NeutralSignal(name Category, reasoning string) Signal {
	return Signal{
		Name:       name,
		Direction:  Neutral,
		DataPoints: map[string]interface{}{},
		Reasoning:  reasoning,
	}
}

// Usable reports whether the signal carries any evidence
func (s Signal) Usable() bool {
	return s.Confidence > 0
}

// Validate checks ranges and the zero-confidence rule
func (s Signal) Validate() error {
	if !s.Direction.Valid() {
		return fmt.Errorf("%w: signal %s has unknown direction %q", ErrInvariant, s.Name, s.Direction)
	}
	if s.Strength < 0 || s.Strength > 1 {
		return fmt.Errorf("%w: signal %s strength %.4f outside [0, 1]", ErrInvariant, s.Name, s.Strength)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("%w: signal %s confidence %.4f outside [0, 1]", ErrInvariant, s.Name, s.Confidence)
	}
	if s.Confidence == 0 && (s.Direction != Neutral || s.Strength != 0) {
		return fmt.Errorf("%w: signal %s has zero confidence but is %s/%.2f", ErrInvariant, s.Name, s.Direction, s.Strength)
	}
	return nil
}
