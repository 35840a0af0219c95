package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alpha-engine/backend/pkg/config"
	"github.com/wonny/alpha-engine/backend/pkg/redis"
)

// countingLimiter allows Limit requests per key and never expires them
type countingLimiter struct {
	mu   sync.Mutex
	seen map[string]int
	keys []string
	err  error
}

func (c *countingLimiter) Allow(_ context.Context, cfg redis.RateLimitConfig) (bool, int, error) {
	if c.err != nil {
		return false, 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = map[string]int{}
	}
	c.keys = append(c.keys, cfg.Key)
	if c.seen[cfg.Key] >= cfg.Limit {
		return false, 0, nil
	}
	c.seen[cfg.Key]++
	return true, cfg.Limit - c.seen[cfg.Key], nil
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := &countingLimiter{}
	env := newLimitedTestEnv(t, RateLimit{Limiter: limiter, Limit: 2, Window: time.Minute})

	for i, want := range []string{"1", "0"} {
		resp, _ := get(t, env.server.URL+"/api/analysis/NVDA")
		assert.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, want, resp.Header.Get("X-RateLimit-Remaining"))
	}

	resp, body := get(t, env.server.URL+"/api/analysis/NVDA")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, body)
	assert.Equal(t, 2, env.analyzer.calls)

	assert.Equal(t, "api:127.0.0.1", limiter.keys[0])
}

func TestRateLimit_SkipsHealthAndMetrics(t *testing.T) {
	limiter := &countingLimiter{}
	env := newLimitedTestEnv(t, RateLimit{Limiter: limiter, Limit: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		resp, _ := get(t, env.server.URL+"/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Empty(t, limiter.keys)
}

func TestRateLimit_LimiterErrorAllows(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis: connection refused")}
	env := newLimitedTestEnv(t, RateLimit{Limiter: limiter, Limit: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		resp, _ := get(t, env.server.URL+"/api/analysis/NVDA")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 3, env.analyzer.calls)
}

func TestRateLimit_DisabledRedisAllowsEverything(t *testing.T) {
	rc, err := redis.New(context.Background(), &config.Config{})
	require.NoError(t, err)

	env := newLimitedTestEnv(t, RateLimit{Limiter: redis.NewRateLimiter(rc, "alpha"), Limit: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		resp, _ := get(t, env.server.URL+"/api/analysis/NVDA")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"203.0.113.7:52311", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"unix-socket", "unix-socket"},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/news", nil)
			r.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, clientAddr(r))
		})
	}
}

func TestRateLimit_ZeroValueDisabled(t *testing.T) {
	assert.False(t, RateLimit{}.enabled())
	assert.False(t, RateLimit{Limiter: &countingLimiter{}}.enabled())
	assert.True(t, RateLimit{Limiter: &countingLimiter{}, Limit: 1, Window: time.Second}.enabled())
}
