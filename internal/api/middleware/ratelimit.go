package middleware

import (
	"context"
	"customer-management/internal/config"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTTL         = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (c *clientLimiter) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *clientLimiter) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}

// RateLimiterMiddleware keeps one token bucket per client IP. Buckets unused
// for limiterIdleTTL are dropped by a janitor goroutine that stops with ctx.
type RateLimiterMiddleware struct {
	limiters sync.Map
	cfg      config.RateLimitConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewRateLimiterMiddleware(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		cfg:    cfg,
		logger: logger.With("component", "RateLimiter"),
		now:    time.Now,
	}

	if cfg.Enabled {
		rl.logger.Info("Rate limiter middleware configured", "rps", cfg.RPS, "burst", cfg.Burst)
		go rl.cleanupLimiters(ctx)
	} else {
		rl.logger.Info("Rate limiting is disabled via configuration.")
	}

	return rl
}

func (rl *RateLimiterMiddleware) getLimiter(ip string) *rate.Limiter {
	now := rl.now()
	if existing, ok := rl.limiters.Load(ip); ok {
		cl := existing.(*clientLimiter)
		cl.touch(now)
		return cl.limiter
	}

	fresh := &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst), lastSeen: now}
	actual, _ := rl.limiters.LoadOrStore(ip, fresh)
	cl := actual.(*clientLimiter)
	cl.touch(now)
	return cl.limiter
}

func (rl *RateLimiterMiddleware) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiterMiddleware) evictIdle() int {
	now := rl.now()
	evicted := 0
	rl.limiters.Range(func(key, value any) bool {
		if value.(*clientLimiter).idleSince(now) >= limiterIdleTTL {
			rl.limiters.Delete(key)
			evicted++
		}
		return true
	})
	if evicted > 0 {
		rl.logger.Debug("Evicted idle rate limiters", "count", evicted)
	}
	return evicted
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		ip := strings.TrimSpace(ips[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		limiter := rl.getLimiter(ip)

		if !limiter.Allow() {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{
					"message": "Rate limit exceeded",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
