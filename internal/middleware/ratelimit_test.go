// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)

	assert.True(t, rl.Allow("ip:1.2.3.4", now))
	assert.True(t, rl.Allow("ip:1.2.3.4", now))
	assert.True(t, rl.Allow("ip:1.2.3.4", now))
	assert.False(t, rl.Allow("ip:1.2.3.4", now))
}

func TestRateLimiter_IndependentKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC)

	assert.True(t, rl.Allow("ip:1.2.3.4", now))
	assert.False(t, rl.Allow("ip:1.2.3.4", now))
	assert.True(t, rl.Allow("ip:5.6.7.8", now))
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 59, 0, time.UTC)

	assert.True(t, rl.Allow("ip:1.2.3.4", now))
	assert.False(t, rl.Allow("ip:1.2.3.4", now))

	// The counter resets at the window boundary.
	assert.True(t, rl.Allow("ip:1.2.3.4", now.Add(time.Second)))
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(2, time.Minute)

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, handler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
