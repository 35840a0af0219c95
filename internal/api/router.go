package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/alpha-engine/backend/internal/api/handlers"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/metrics"
)

// Handlers groups the endpoint handlers mounted under /api
type Handlers struct {
	Analysis *handlers.AnalysisHandler
	News     *handlers.NewsHandler
}

// NewRouter creates and configures the HTTP router. gatherer may be nil
// to leave /metrics unmounted.
func NewRouter(h Handlers, gatherer prometheus.Gatherer, rec *metrics.Recorder, limit RateLimit, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()
	if limit.enabled() {
		api.Use(rateLimitMiddleware(limit, log))
	}

	// Analysis endpoints
	if h.Analysis != nil {
		api.HandleFunc("/analysis/{ticker}", h.Analysis.GetAnalysis).Methods("GET")
		api.HandleFunc("/analysis/{ticker}/report", h.Analysis.GetReport).Methods("GET")
	}

	// News endpoints
	if h.News != nil {
		api.HandleFunc("/news", h.News.List).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(rec))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "alpha-engine-api",
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
