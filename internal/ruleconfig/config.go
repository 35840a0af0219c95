package ruleconfig

import "github.com/wonny/alpha-engine/backend/internal/contradiction"

// Config is the YAML form of the contradiction rule table.
// Structs only (no maps) so that Hash is reproducible.
type Config struct {
	Meta  Meta                 `yaml:"meta" json:"meta"`
	Rules []contradiction.Rule `yaml:"rules" json:"rules"`
}

// Meta identifies a rule table revision
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Default wraps the built-in rule table
func Default() *Config {
	return &Config{
		Meta:  Meta{Name: "default", Version: "1"},
		Rules: contradiction.DefaultRules(),
	}
}
