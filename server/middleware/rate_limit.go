package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierrors "github.com/hrygo/agenda/server/internal/errors"
)

// Default per-key limits: one message per second with a burst of 5.
const (
	DefaultRate  = rate.Limit(1)
	DefaultBurst = 5
)

// RateLimiter provides rate limiting functionality keyed by an arbitrary string.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*entry
	rate   rate.Limit
	burst  int
	now    func() time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter. Non-positive values use the defaults.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	if r <= 0 {
		r = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		limits: make(map[string]*entry),
		rate:   r,
		burst:  burst,
		now:    time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.limits[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limits[key] = e
	}
	e.lastSeen = rl.now()
	return e.limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait waits for a request to be allowed.
// Returns error if the context is cancelled or rate limit exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Prune drops limiters idle for longer than idle and returns how many were removed.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for key, e := range rl.limits {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limits, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys.
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(c echo.Context) string

// SessionKey keys requests by the :session path parameter, falling back to the client IP.
func SessionKey(c echo.Context) string {
	if id := c.Param("session"); id != "" {
		return "session:" + id
	}
	return "ip:" + c.RealIP()
}

// RateLimit rejects requests over the limit with 429 and an API error body.
func RateLimit(rl *RateLimiter, key KeyFunc) echo.MiddlewareFunc {
	if key == nil {
		key = SessionKey
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(key(c)) {
				apiErr := apierrors.RateLimitExceeded("too many messages, slow down")
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, apiErr.Body())
			}
			return next(c)
		}
	}
}
