package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder publishes engine metrics to Prometheus.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	analyses         *prometheus.CounterVec
	analysisLatency  prometheus.Histogram
	contradictions   *prometheus.CounterVec
	consensus        *prometheus.GaugeVec
	extractorFailure *prometheus.CounterVec
	newsScraped      *prometheus.CounterVec
	ideas            *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// New creates a recorder registered on reg (prometheus.DefaultRegisterer in production)
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_analyses_total",
				Help: "Total number of ticker analyses by outcome",
			},
			[]string{"outcome"},
		),
		analysisLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "alpha_analysis_duration_seconds",
				Help:    "Duration of one extract/detect/score pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		contradictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_contradictions_total",
				Help: "Detected contradictions by rule label and severity",
			},
			[]string{"rule", "severity"},
		),
		consensus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alpha_consensus_strength",
				Help: "Last consensus strength per ticker and direction",
			},
			[]string{"ticker", "direction"},
		),
		extractorFailure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_extractor_failures_total",
				Help: "Signal extractions that failed and degraded to neutral",
			},
			[]string{"category"},
		),
		newsScraped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_news_items_scraped_total",
				Help: "News items scraped per source",
			},
			[]string{"source"},
		),
		ideas: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_trading_ideas_total",
				Help: "Trading ideas emitted by the monitor",
			},
			[]string{"alpha"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alpha_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alpha_http_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		),
	}
}

// RecordAnalysis records one analysis pass
func (r *Recorder) RecordAnalysis(outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(outcome).Inc()
	r.analysisLatency.Observe(seconds)
}

// RecordContradiction records a detected contradiction
func (r *Recorder) RecordContradiction(rule, severity string) {
	if r == nil {
		return
	}
	r.contradictions.WithLabelValues(rule, severity).Inc()
}

// RecordConsensus sets the latest consensus strength for a ticker.
// Stale directions for the ticker are cleared first.
func (r *Recorder) RecordConsensus(ticker, direction string, strength float64) {
	if r == nil {
		return
	}
	r.consensus.DeletePartialMatch(prometheus.Labels{"ticker": ticker})
	r.consensus.WithLabelValues(ticker, direction).Set(strength)
}

// RecordExtractorFailure records an extractor that degraded to neutral
func (r *Recorder) RecordExtractorFailure(category string) {
	if r == nil {
		return
	}
	r.extractorFailure.WithLabelValues(category).Inc()
}

// RecordNewsScraped adds n scraped items for a source
func (r *Recorder) RecordNewsScraped(source string, n int) {
	if r == nil {
		return
	}
	r.newsScraped.WithLabelValues(source).Add(float64(n))
}

// RecordIdea records an emitted trading idea
func (r *Recorder) RecordIdea(alpha string) {
	if r == nil {
		return
	}
	r.ideas.WithLabelValues(alpha).Inc()
}

// RecordHTTPRequest records one API request
func (r *Recorder) RecordHTTPRequest(route, method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, status).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(seconds)
}
