package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// Analyzer runs the engine for one ticker
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Analysis, error)
}

// TickerStatus is the scan outcome for one ticker
type TickerStatus struct {
	Ticker    string                       `json:"ticker"`
	Direction contracts.ConsensusDirection `json:"direction,omitempty"`
	Strength  float64                      `json:"strength"`
	Alpha     contracts.AlphaPotential     `json:"alpha,omitempty"`
	Idea      bool                         `json:"idea"`
	Error     string                       `json:"error,omitempty"`
}

// ScanResult summarizes one pass over the watchlist
type ScanResult struct {
	StartedAt time.Time             `json:"started_at"`
	Duration  time.Duration         `json:"duration"`
	Statuses  []TickerStatus        `json:"statuses"`
	Ideas     []*contracts.Analysis `json:"ideas"`
}

// Failed returns the tickers whose analysis errored
func (r *ScanResult) Failed() []string {
	var out []string
	for _, s := range r.Statuses {
		if s.Error != "" {
			out = append(out, s.Ticker)
		}
	}
	return out
}

// Monitor scans a watchlist and publishes trading ideas
type Monitor struct {
	analyzer  Analyzer
	watchlist []string
	journal   *Journal
	sinks     []contracts.IdeaSink
	metrics   *metrics.Recorder
	logger    *logger.Logger
	now       func() time.Time
}

// New creates a monitor over watchlist (tickers are upper-cased)
func New(analyzer Analyzer, watchlist []string, log *logger.Logger) *Monitor {
	tickers := make([]string, 0, len(watchlist))
	for _, t := range watchlist {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}
	return &Monitor{
		analyzer:  analyzer,
		watchlist: tickers,
		logger:    log,
		now:       time.Now,
	}
}

// WithJournal writes scan headers, status lines and ideas to j
func (m *Monitor) WithJournal(j *Journal) *Monitor {
	m.journal = j
	return m
}

// WithSinks adds idea sinks published to after the journal
func (m *Monitor) WithSinks(sinks ...contracts.IdeaSink) *Monitor {
	m.sinks = append(m.sinks, sinks...)
	return m
}

// WithMetrics counts published ideas on rec
func (m *Monitor) WithMetrics(rec *metrics.Recorder) *Monitor {
	m.metrics = rec
	return m
}

// Watchlist returns the scanned tickers
func (m *Monitor) Watchlist() []string {
	return append([]string(nil), m.watchlist...)
}

// Scan analyzes every watchlist ticker in order. A failing ticker is
// logged and skipped; only cancellation stops the scan early.
func (m *Monitor) Scan(ctx context.Context) (*ScanResult, error) {
	result := &ScanResult{StartedAt: m.now()}
	rule := strings.Repeat("#", ruleWidth)
	m.journalf("\n%s\n  SCAN @ %s\n%s\n", rule, Stamp(result.StartedAt), rule)

	for _, ticker := range m.watchlist {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		status := TickerStatus{Ticker: ticker}
		a, err := m.analyzer.Analyze(ctx, ticker)
		if err != nil {
			status.Error = err.Error()
			result.Statuses = append(result.Statuses, status)
			m.logger.WithError(err).ForTicker(ticker).Error("Analysis failed")
			continue
		}

		status.Direction = a.Score.Direction
		status.Strength = a.Score.Strength
		status.Alpha = a.Score.AlphaPotential
		status.Idea = IsIdea(a)
		result.Statuses = append(result.Statuses, status)

		line := StatusLine(a)
		m.logger.Info(line)

		if !status.Idea {
			m.journalf("  %s - no edge\n", line)
			continue
		}

		result.Ideas = append(result.Ideas, a)
		m.publish(ctx, a, FormatIdea(a, result.StartedAt))
		m.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"alpha":  a.Score.AlphaPotential,
		}).Info(">>> IDEA FOUND")
	}

	result.Duration = m.now().Sub(result.StartedAt)
	m.journalf("\nScan complete: %d ideas from %d stocks\n", len(result.Ideas), len(m.watchlist))
	m.logger.WithFields(map[string]interface{}{
		"ideas":    len(result.Ideas),
		"stocks":   len(m.watchlist),
		"duration": result.Duration,
	}).Info("Scan complete")

	return result, nil
}

// publish fans an idea out to the journal and every sink. Sink failures
// are logged; they never abort the scan.
func (m *Monitor) publish(ctx context.Context, a *contracts.Analysis, text string) {
	m.metrics.RecordIdea(string(a.Score.AlphaPotential))

	if m.journal != nil {
		if err := m.journal.Publish(ctx, a, text); err != nil {
			m.logger.WithError(err).Warn("Journal write failed")
		}
	}
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, a, text); err != nil {
			m.logger.WithError(err).ForTicker(a.Ticker).Warn("Idea sink publish failed")
		}
	}
}

func (m *Monitor) journalf(format string, args ...interface{}) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Printf(format, args...); err != nil {
		m.logger.WithError(err).Warn("Journal write failed")
	}
}

// Close closes the journal and every sink
func (m *Monitor) Close() error {
	var firstErr error
	if m.journal != nil {
		firstErr = m.journal.Close()
	}
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
