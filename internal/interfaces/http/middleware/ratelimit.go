package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmacy-pos/backend/internal/interfaces/http/dto"
)

// RateLimiter tracks request counts per client over a fixed window. Counters
// live in process memory; each server instance enforces its own limit.
type RateLimiter struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	limit    int
	window   time.Duration
	done     chan struct{}
}

type windowCounter struct {
	used    int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window per key
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		counters: make(map[string]*windowCounter),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.evictStale()
	return rl
}

// Allow records a request for key and reports whether it fits in the window.
// Remaining is the request budget left after this one.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, ok := rl.counters[key]
	if !ok || now.After(counter.resetAt) {
		counter = &windowCounter{resetAt: now.Add(rl.window)}
		rl.counters[key] = counter
	}

	if counter.used >= rl.limit {
		return false, 0
	}
	counter.used++
	return true, rl.limit - counter.used
}

// Stop terminates the background eviction goroutine
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, counter := range rl.counters {
				if now.After(counter.resetAt) {
					delete(rl.counters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// RateLimit limits requests per client IP, answering 429 with the standard
// error envelope when the window budget is spent
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	limitHeader := strconv.Itoa(limiter.limit)
	return func(c *gin.Context) {
		allowed, remaining := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", limitHeader)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited, "Too many requests. Please try again later.",
			))
			return
		}

		c.Next()
	}
}
