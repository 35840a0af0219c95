package ruleconfig

import "fmt"

// ValidationError is a rule table that must not be used
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every rule: known categories, distinct sides,
// min_strength in [0, 1] and unique labels.
func Validate(cfg *Config) error {
	if len(cfg.Rules) == 0 {
		return ValidationError{"rules", "at least one rule is required"}
	}

	labels := make(map[string]int, len(cfg.Rules))
	for i, r := range cfg.Rules {
		field := fmt.Sprintf("rules[%d]", i)

		if !r.A.Valid() {
			return ValidationError{field + ".a", fmt.Sprintf("unknown category %q", r.A)}
		}
		if !r.B.Valid() {
			return ValidationError{field + ".b", fmt.Sprintf("unknown category %q", r.B)}
		}
		if r.A == r.B {
			return ValidationError{field, "a and b must differ"}
		}
		if r.MinStrength < 0 || r.MinStrength > 1 {
			return ValidationError{field + ".min_strength", "must be in [0, 1]"}
		}
		if r.Label == "" {
			return ValidationError{field + ".label", "required"}
		}
		if prev, dup := labels[r.Label]; dup {
			return ValidationError{field + ".label", fmt.Sprintf("duplicates rules[%d]", prev)}
		}
		labels[r.Label] = i
	}

	return nil
}
