package middleware

import (
	"bytes"
	"context"
	"customer-management/internal/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiterMiddleware {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRateLimiterMiddleware(ctx, cfg, logger)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterMiddleware(t *testing.T) {
	t.Run("allows requests under the rate limit", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
		handler := rl.Middleware(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks requests exceeding the burst", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2})
		handler := rl.Middleware(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response["error"]["message"])
	})

	t.Run("limits each client separately", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
		handler := rl.Middleware(okHandler())

		for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, addr)
		}
	})

	t.Run("disabled limiter passes everything", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{Enabled: false, RPS: 0.001, Burst: 1})
		handler := rl.Middleware(okHandler())

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("extractIP handles various headers", func(t *testing.T) {
		rl := newTestLimiter(t, config.RateLimitConfig{})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
		assert.Equal(t, "192.168.1.1", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "garbage")
		req.Header.Set("X-Real-IP", "172.16.0.5")
		assert.Equal(t, "172.16.0.5", rl.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		assert.Equal(t, "203.0.113.9", rl.extractIP(req))
	})
}

func TestRateLimiterMiddleware_EvictIdle(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	current := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }

	rl.getLimiter("10.0.0.1")
	current = current.Add(5 * time.Minute)
	rl.getLimiter("10.0.0.2")

	current = current.Add(6 * time.Minute)
	assert.Equal(t, 1, rl.evictIdle())

	_, stale := rl.limiters.Load("10.0.0.1")
	_, fresh := rl.limiters.Load("10.0.0.2")
	assert.False(t, stale)
	assert.True(t, fresh)
}

func TestRateLimiterMiddleware_ConcurrentFirstRequests(t *testing.T) {
	rl := newTestLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})

	var wg sync.WaitGroup
	results := make(chan any, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- rl.getLimiter("10.0.0.9")
		}()
	}
	wg.Wait()
	close(results)

	first := <-results
	for l := range results {
		assert.Same(t, first, l)
	}
}
