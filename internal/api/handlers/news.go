package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
	"github.com/wonny/alpha-engine/backend/pkg/redis"
)

const (
	defaultNewsHours = 24
	maxNewsHours     = 24 * 7
	defaultNewsLimit = 50
	maxNewsLimit     = 500
)

// NewsHandler serves the local news store
type NewsHandler struct {
	store  news.Store
	cache  *redis.Cache
	logger *logger.Logger
}

// NewNewsHandler creates a new news handler. Listings are cached for
// redis.TTLShort.
func NewNewsHandler(store news.Store, cache *redis.Cache, log *logger.Logger) *NewsHandler {
	return &NewsHandler{store: store, cache: cache, logger: log}
}

// NewsResponse is the news listing payload
type NewsResponse struct {
	Ticker string      `json:"ticker,omitempty"`
	Hours  int         `json:"hours"`
	Count  int         `json:"count"`
	Items  []news.Item `json:"items"`
}

// List returns recent news, newest first
// GET /api/news?ticker=NVDA&hours=24&limit=50&source=finviz
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	hours := intParam(q.Get("hours"), defaultNewsHours, maxNewsHours)
	limit := intParam(q.Get("limit"), defaultNewsLimit, maxNewsLimit)
	ticker := strings.ToUpper(strings.TrimSpace(q.Get("ticker")))
	source := q.Get("source")

	var items []news.Item
	_, err := h.cache.GetOrSet(ctx, redis.NewsKey(ticker, source, hours, limit), &items, redis.TTLShort, func() (interface{}, error) {
		// no ticker and no source means macro news only
		return h.store.Query(ctx, news.QueryOptions{
			Ticker:       ticker,
			Source:       source,
			HoursBack:    hours,
			Limit:        limit,
			FilterTicker: ticker != "" || source == "",
		})
	})
	if err != nil {
		h.logger.WithError(err).ForTicker(ticker).Error("Failed to query news")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve news")
		return
	}

	if items == nil {
		items = []news.Item{}
	}
	respondJSON(w, http.StatusOK, NewsResponse{
		Ticker: ticker,
		Hours:  hours,
		Count:  len(items),
		Items:  items,
	})
}

// intParam parses a positive integer, falling back to def and capping at max
func intParam(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
