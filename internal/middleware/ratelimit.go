// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter is an in-memory fixed-window counter keyed by client IP.
// Good for single-instance deployments; counters reset at each window
// boundary rather than sliding.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	window time.Time
	count  int
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]bucket),
		limit:   limit,
		window:  window,
	}
}

// Allow reports whether a request identified by key is within its limit.
func (rl *RateLimiter) Allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	win := now.Truncate(rl.window)
	if !ok || b.window.Before(win) {
		rl.buckets[key] = bucket{window: win, count: 1}
		return true
	}
	if b.count >= rl.limit {
		return false
	}
	b.count++
	rl.buckets[key] = b
	return true
}

// Middleware gates a route group on the limiter, keyed by client IP.
// Exceeding the limit yields 429.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := clientKey(c)
			if key != "" && !rl.Allow(key, time.Now()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			}
			return next(c)
		}
	}
}

// clientKey normalizes the client address to just the host.
func clientKey(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return "ip:" + ip
	}
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil || host == "" {
		return ""
	}
	return "ip:" + host
}
