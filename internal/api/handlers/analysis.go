package handlers

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/report"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/redis"
)

// Analyzer runs the engine for one ticker
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*contracts.Analysis, error)
}

// Symbols like NVDA, BRK.B, ^VIX, GC=F
var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,14}$`)

// AnalysisHandler serves engine results
type AnalysisHandler struct {
	analyzer Analyzer
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler. cache may be nil.
func NewAnalysisHandler(analyzer Analyzer, cache *redis.Cache, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		cache:    cache,
		logger:   log,
	}
}

// GetAnalysis returns the full analysis as JSON
// GET /api/analysis/{ticker}?refresh=true
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// GetReport returns the analysis rendered as markdown
// GET /api/analysis/{ticker}/report
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analysis(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.Markdown(a)))
}

// analysis resolves the ticker and returns a cached or fresh analysis,
// writing the error response itself on failure
func (h *AnalysisHandler) analysis(w http.ResponseWriter, r *http.Request) (*contracts.Analysis, bool) {
	ctx := r.Context()
	ticker := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["ticker"]))

	if !tickerPattern.MatchString(ticker) {
		respondError(w, http.StatusBadRequest, "invalid ticker")
		return nil, false
	}

	key := redis.AnalysisKey(ticker)
	refresh := r.URL.Query().Get("refresh") == "true"

	if h.cache != nil && !refresh {
		var cached contracts.Analysis
		found, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.WithError(err).ForTicker(ticker).Warn("Analysis cache read failed")
		}
		if found {
			w.Header().Set("X-Cache", "HIT")
			return &cached, true
		}
	}

	a, err := h.analyzer.Analyze(ctx, ticker)
	if err != nil {
		h.logger.WithError(err).ForTicker(ticker).Error("Failed to analyze ticker")
		respondError(w, http.StatusBadGateway, "Failed to analyze "+ticker)
		return nil, false
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, a, redis.TTLAnalysis); err != nil {
			h.logger.WithError(err).ForTicker(ticker).Warn("Analysis cache write failed")
		}
	}
	w.Header().Set("X-Cache", "MISS")
	return a, true
}
