package ruleconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/contradiction"
)

func TestLoad_ShippedTableMatchesDefault(t *testing.T) {
	cfg, data, err := Load("../../config/rules.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, contradiction.DefaultRules(), cfg.Rules)

	got, err := Hash(cfg)
	require.NoError(t, err)
	want, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got, 64)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
meta: {name: x, version: "1"}
rules:
  - a: macro
    b: momentum
    min_strenght: 0.3
    label: typo
`))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	rule := func(mut func(*contradiction.Rule)) *Config {
		r := contradiction.Rule{A: contracts.CategoryMacro, B: contracts.CategoryMomentum, MinStrength: 0.3, Label: "macro_vs_micro"}
		mut(&r)
		return &Config{Rules: []contradiction.Rule{r}}
	}

	tests := []struct {
		name      string
		cfg       *Config
		wantField string
	}{
		{"empty", &Config{}, "rules"},
		{"unknown a", rule(func(r *contradiction.Rule) { r.A = "sentiment" }), "rules[0].a"},
		{"unknown b", rule(func(r *contradiction.Rule) { r.B = "" }), "rules[0].b"},
		{"same sides", rule(func(r *contradiction.Rule) { r.B = contracts.CategoryMacro }), "rules[0]"},
		{"strength range", rule(func(r *contradiction.Rule) { r.MinStrength = 1.5 }), "rules[0].min_strength"},
		{"missing label", rule(func(r *contradiction.Rule) { r.Label = "" }), "rules[0].label"},
		{
			"duplicate label",
			&Config{Rules: append(contradiction.DefaultRules(), contradiction.DefaultRules()[0])},
			"rules[9].label",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			require.Error(t, err)

			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestHash_ChangesWithRules(t *testing.T) {
	base, err := Hash(Default())
	require.NoError(t, err)

	changed := Default()
	changed.Rules[0].MinStrength = 0.35
	other, err := Hash(changed)
	require.NoError(t, err)

	assert.NotEqual(t, base, other)
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Len(t, cfg.Rules, 9)

	_, err = LoadOrDefault("/nonexistent/rules.yaml")
	assert.Error(t, err)
}
