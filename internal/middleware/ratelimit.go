// Package middleware provides the HTTP middleware shared by every plugin.
// Global middleware is registered in internal/app/app.go; per-route
// middleware such as RateLimit is attached in each plugin's routes.go.
package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishwatech/studyplan/internal/apperror"
)

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// fixedWindow counts requests per key in fixed windows. Stale entries are
// swept inline once per window instead of by a background goroutine.
type fixedWindow struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	entries   map[string]*rateLimitEntry
	lastSweep time.Time
}

func newFixedWindow(max int, window time.Duration) *fixedWindow {
	return &fixedWindow{max: max, window: window, entries: make(map[string]*rateLimitEntry)}
}

// allow records a request for key at now and reports whether it is under the limit.
func (f *fixedWindow) allow(key string, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if now.Sub(f.lastSweep) > f.window {
		for k, e := range f.entries {
			if now.Sub(e.windowStart) > f.window {
				delete(f.entries, k)
			}
		}
		f.lastSweep = now
	}

	entry, ok := f.entries[key]
	if !ok || now.Sub(entry.windowStart) > f.window {
		f.entries[key] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}
	entry.count++
	return entry.count <= f.max
}

// RateLimit returns middleware that limits requests per client IP to
// maxRequests within window. Each call gets its own counters, so limits are
// per route. Returns 429 when exceeded.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	limiter := newFixedWindow(maxRequests, window)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.allow(c.RealIP(), time.Now()) {
				return apperror.NewTooManyRequests("Rate limit exceeded. Please try again later.")
			}
			return next(c)
		}
	}
}
