package signals

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// Default returns the eight category extractors in canonical order
func Default() []Extractor {
	return []Extractor{
		technicalRules(),
		valuationRules(),
		insiderRules(),
		earningsRules(),
		optionsRules(),
		momentumRules(),
		macroRules(),
		newsRules(),
	}
}

// Builder runs every extractor against one snapshot.
// A faulting extractor is replaced by a neutral signal carrying the fault,
// so callers always get exactly one signal per extractor.
type Builder struct {
	extractors []Extractor
	logger     *logger.Logger
	metrics    *metrics.Recorder
}

// NewBuilder creates a builder; nil extractors means Default()
func NewBuilder(extractors []Extractor, log *logger.Logger) *Builder {
	if extractors == nil {
		extractors = Default()
	}
	return &Builder{
		extractors: extractors,
		logger:     log,
	}
}

// WithMetrics counts substituted extractor failures on rec
func (b *Builder) WithMetrics(rec *metrics.Recorder) *Builder {
	b.metrics = rec
	return b
}

// ExtractAll runs the extractors in parallel and returns their signals in
// extractor order.
func (b *Builder) ExtractAll(ctx context.Context, snap *contracts.Snapshot) ([]contracts.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out := make([]contracts.Signal, len(b.extractors))

	var g errgroup.Group
	for i, ex := range b.extractors {
		i, ex := i, ex
		g.Go(func() error {
			out[i] = b.extract(ex, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"signals":  len(out),
		"usable":   countUsable(out),
		"duration": time.Since(start),
	}
	if snap != nil {
		fields["ticker"] = snap.Ticker
	}
	b.logger.WithFields(fields).Debug("Signals extracted")

	return out, nil
}

func (b *Builder) extract(ex Extractor, snap *contracts.Snapshot) (sig contracts.Signal) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(map[string]interface{}{
				"category": ex.Category(),
				"panic":    r,
			}).Warn("Extractor failed, substituting neutral signal")
			b.metrics.RecordExtractorFailure(string(ex.Category()))
			sig = Failed(ex.Category(), r)
		}
	}()

	sig = ex.Extract(snap)
	if err := sig.Validate(); err != nil {
		b.logger.WithError(err).Warn("Extractor produced an invalid signal")
		b.metrics.RecordExtractorFailure(string(ex.Category()))
		return Failed(ex.Category(), err)
	}
	return sig
}

func countUsable(sigs []contracts.Signal) int {
	n := 0
	for _, s := range sigs {
		if s.Usable() {
			n++
		}
	}
	return n
}
