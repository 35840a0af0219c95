package signals

import "math"

type comparison int

const (
	cmpGT comparison = iota
	cmpGE
	cmpLT
	cmpLE
	cmpAny
)

// rung is one threshold step of a ladder
type rung struct {
	cmp    comparison
	bound  float64
	score  float64
	label  string
	silent bool // matched, but contributes no sub-score
}

func gt(bound, score float64) rung { return rung{cmp: cmpGT, bound: bound, score: score} }
func ge(bound, score float64) rung { return rung{cmp: cmpGE, bound: bound, score: score} }
func lt(bound, score float64) rung { return rung{cmp: cmpLT, bound: bound, score: score} }
func le(bound, score float64) rung { return rung{cmp: cmpLE, bound: bound, score: score} }
func always(score float64) rung   { return rung{cmp: cmpAny, score: score} }

// tagged attaches a categorical label written to the data points on match
func (r rung) tagged(label string) rung {
	r.label = label
	return r
}

// quiet marks the rung as label-only
func (r rung) quiet() rung {
	r.silent = true
	return r
}

func (r rung) matches(v float64) bool {
	switch r.cmp {
	case cmpGT:
		return v > r.bound
	case cmpGE:
		return v >= r.bound
	case cmpLT:
		return v < r.bound
	case cmpLE:
		return v <= r.bound
	default:
		return true
	}
}

// ladder is an ordered threshold table; the first matching rung wins.
// A reading that matches nothing contributes nothing.
type ladder []rung

func (l ladder) find(v float64) (rung, bool) {
	if math.IsNaN(v) {
		return rung{}, false
	}
	for _, r := range l {
		if r.matches(v) {
			return r, true
		}
	}
	return rung{}, false
}

// grade returns the score for v, or false when v falls in a silent band
func (l ladder) grade(v float64) (float64, bool) {
	r, ok := l.find(v)
	if !ok || r.silent {
		return 0, false
	}
	return r.score, true
}

// apply grades v into the sheet, scaling the score by weight, and records
// the matched label under labelKey when both are set.
func (l ladder) apply(sh *sheet, v, weight float64, labelKey string) {
	r, ok := l.find(v)
	if !ok {
		return
	}
	if labelKey != "" && r.label != "" {
		sh.set(labelKey, r.label)
	}
	if !r.silent {
		sh.add(r.score * weight)
	}
}
