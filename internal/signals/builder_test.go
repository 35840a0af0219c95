package signals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

type panicky struct{}

func (panicky) Category() contracts.Category { return contracts.CategoryOptions }

func (panicky) Extract(*contracts.Snapshot) contracts.Signal {
	var chain map[string]float64
	chain["atm"] = 1 // nil map write
	return contracts.Signal{}
}

type broken struct{}

func (broken) Category() contracts.Category { return contracts.CategoryMacro }

func (broken) Extract(*contracts.Snapshot) contracts.Signal {
	return contracts.Signal{Name: contracts.CategoryMacro, Direction: contracts.Bullish, Strength: 0.8}
}

func TestBuilder_ExtractAll(t *testing.T) {
	b := NewBuilder(nil, logger.NewNop())
	snap := &contracts.Snapshot{
		Ticker: "NVDA",
		Stock:  &contracts.StockData{Price: 110, MA50: 100, MA200: 90, RSI14: 60},
	}

	sigs, err := b.ExtractAll(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, sigs, 8)

	for i, cat := range contracts.AllCategories() {
		assert.Equal(t, cat, sigs[i].Name)
		assert.NoError(t, sigs[i].Validate())
	}
	assert.Equal(t, contracts.Bullish, sigs[0].Direction)
}

func TestBuilder_IsolatesFailures(t *testing.T) {
	b := NewBuilder([]Extractor{technicalRules(), panicky{}, broken{}}, logger.NewNop())

	sigs, err := b.ExtractAll(context.Background(), &contracts.Snapshot{})
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	assert.Equal(t, contracts.CategoryOptions, sigs[1].Name)
	assert.Equal(t, contracts.Neutral, sigs[1].Direction)
	assert.Zero(t, sigs[1].Confidence)
	assert.Contains(t, sigs[1].Reasoning, "Extraction failed")

	assert.Equal(t, contracts.CategoryMacro, sigs[2].Name)
	assert.Equal(t, contracts.Neutral, sigs[2].Direction)
	assert.Contains(t, sigs[2].Reasoning, "invariant violation")
}

func TestBuilder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(nil, logger.NewNop()).ExtractAll(ctx, &contracts.Snapshot{})
	assert.ErrorIs(t, err, context.Canceled)
}
