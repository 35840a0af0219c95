package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/consensus"
	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/contradiction"
	"github.com/wonny/alpha-engine/backend/internal/signals"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// Analyzer runs extract → detect → score → interpret for one ticker at a time.
// It keeps no per-run state, so one Analyzer can serve concurrent requests.
type Analyzer struct {
	snapshots contracts.SnapshotSource
	news      contracts.NewsSource // optional
	builder   *signals.Builder
	detector  *contradiction.Detector
	rulesHash string
	metrics   *metrics.Recorder
	logger    *logger.Logger
	now       func() time.Time
}

// NewAnalyzer creates an analyzer. news may be nil; the news signal then
// reports no data.
func NewAnalyzer(
	snapshots contracts.SnapshotSource,
	news contracts.NewsSource,
	builder *signals.Builder,
	detector *contradiction.Detector,
	log *logger.Logger,
) *Analyzer {
	return &Analyzer{
		snapshots: snapshots,
		news:      news,
		builder:   builder,
		detector:  detector,
		logger:    log,
		now:       time.Now,
	}
}

// WithMetrics records every evaluation on rec
func (a *Analyzer) WithMetrics(rec *metrics.Recorder) *Analyzer {
	a.metrics = rec
	return a
}

// WithRulesHash stamps analyses with the hash of the rule table in use
func (a *Analyzer) WithRulesHash(hash string) *Analyzer {
	a.rulesHash = hash
	return a
}

// Analyze collects inputs for ticker and evaluates them
func (a *Analyzer) Analyze(ctx context.Context, ticker string) (*contracts.Analysis, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	snap, err := a.snapshots.Collect(ctx, ticker)
	if err != nil {
		a.metrics.RecordAnalysis("collect_error", 0)
		return nil, fmt.Errorf("collect %s: %w", ticker, err)
	}
	if snap == nil {
		snap = &contracts.Snapshot{Ticker: ticker}
	}

	if a.news != nil && snap.News == nil {
		news, err := a.news.Collect(ctx, ticker)
		if err != nil {
			a.logger.WithError(err).ForTicker(ticker).Warn("News collection failed")
		} else {
			snap.News = news
		}
	}

	return a.Evaluate(ctx, snap)
}

// Evaluate runs the pure part of the engine on an already collected snapshot
func (a *Analyzer) Evaluate(ctx context.Context, snap *contracts.Snapshot) (*contracts.Analysis, error) {
	start := time.Now()

	sigs, err := a.builder.ExtractAll(ctx, snap)
	if err != nil {
		a.metrics.RecordAnalysis("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("extract signals: %w", err)
	}

	found, err := a.detector.Detect(sigs)
	if err != nil {
		a.metrics.RecordAnalysis("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("detect contradictions: %w", err)
	}

	score := consensus.Score(sigs, found)

	result := &contracts.Analysis{
		Ticker:         snap.Ticker,
		AsOf:           snap.AsOf,
		Signals:        sigs,
		Contradictions: found,
		Score:          score,
		Interpretation: consensus.Interpret(score),
		RulesHash:      a.rulesHash,
	}
	if result.AsOf.IsZero() {
		result.AsOf = a.now()
	}
	if snap.Stock != nil {
		result.Price = snap.Stock.Price
	}

	a.record(result, time.Since(start))
	return result, nil
}

func (a *Analyzer) record(result *contracts.Analysis, elapsed time.Duration) {
	a.metrics.RecordAnalysis("ok", elapsed.Seconds())
	for _, c := range result.Contradictions {
		a.metrics.RecordContradiction(c.Category, string(c.Severity))
	}
	a.metrics.RecordConsensus(result.Ticker, string(result.Score.Direction), result.Score.Strength)

	a.logger.WithFields(map[string]interface{}{
		"ticker":         result.Ticker,
		"direction":      result.Score.Direction,
		"strength":       result.Score.Strength,
		"contradictions": result.Score.ContradictionCount,
		"alpha":          result.Score.AlphaPotential,
		"duration":       elapsed,
	}).Debug("Analysis complete")
}
