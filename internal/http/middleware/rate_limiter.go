package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"alumni-portal/pkg/rbac/echoadapter"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	strictRequestsPerSecond = 5
	strictBurst             = 10

	// An idle bucket has long since refilled, so dropping it loses nothing.
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements token bucket rate limiting per identity. Buckets
// idle for limiterIdleTTL are swept on access.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
	rate      rate.Limit
	burst     int
}

// NewRateLimiter creates a new rate limiter
// requestsPerSecond: number of requests allowed per second
// burst: maximum burst size
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		lastSweep: time.Now(),
		now:       time.Now,
		rate:      rate.Limit(requestsPerSecond),
		burst:     burst,
	}
}

// NewStrictRateLimiter creates a strict rate limiter for login attempts
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(strictRequestsPerSecond, strictBurst)
}

// getLimiter gets or creates a rate limiter for the given key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= limiterSweepInterval {
		rl.sweepLocked(now)
	}

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Len reports the number of tracked buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Allow checks if a request should be allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// identityKey rate limits signed-in users by account and everyone else by IP.
func identityKey(c echo.Context) string {
	if subject := echoadapter.GetAuthSubject(c); subject.Authenticated && subject.ID != "" {
		return "user:" + subject.ID
	}
	return "ip:" + c.RealIP()
}

// Middleware returns an Echo middleware function for rate limiting.
// Install it after authentication so signed-in users get their own bucket.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return rl.middleware(identityKey)
}

// IPMiddleware always keys by client IP.
func (rl *RateLimiter) IPMiddleware() echo.MiddlewareFunc {
	return rl.middleware(func(c echo.Context) string { return "ip:" + c.RealIP() })
}

func (rl *RateLimiter) middleware(keyFn func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(keyFn(c))

			// Check rate limit
			if !limiter.Allow() {
				// Add rate limit headers
				c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("Retry-After", "1")

				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
			}

			// Add rate limit headers for successful requests
			tokens := int(limiter.Tokens())
			c.Response().Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.burst))
			c.Response().Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", tokens))

			return next(c)
		}
	}
}
