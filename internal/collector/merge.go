package collector

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// Merge overlays every non-zero field of overlay onto base, section by
// section, and returns base. base is modified in place; a nil base
// returns overlay.
func Merge(base, overlay *contracts.Snapshot) (*contracts.Snapshot, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}

	if !overlay.AsOf.IsZero() {
		base.AsOf = overlay.AsOf
	}
	if overlay.Ticker != "" {
		base.Ticker = overlay.Ticker
	}

	var err error
	if base.Stock, err = mergeSection(base.Stock, overlay.Stock); err != nil {
		return nil, fmt.Errorf("merge stock: %w", err)
	}
	if base.Macro, err = mergeSection(base.Macro, overlay.Macro); err != nil {
		return nil, fmt.Errorf("merge macro: %w", err)
	}
	if base.News, err = mergeSection(base.News, overlay.News); err != nil {
		return nil, fmt.Errorf("merge news: %w", err)
	}
	return base, nil
}

func mergeSection[T any](base, overlay *T) (*T, error) {
	if base == nil {
		return overlay, nil
	}
	if overlay == nil {
		return base, nil
	}
	if err := mergo.Merge(base, *overlay, mergo.WithOverride); err != nil {
		return nil, err
	}
	return base, nil
}
