package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/johsire/dev-connector/pkg/apperr"
)

// RateLimiter provides basic per-IP rate limiting
type RateLimiter struct {
	requests map[string]*requestInfo
	mu       sync.Mutex
	limit    int
	window   time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

type requestInfo struct {
	count     int
	expiresAt time.Time
}

// NewRateLimiter creates a fixed-window limiter allowing limit requests
// per window per client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*requestInfo),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}

	// Cleanup goroutine, runs until Stop
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.done:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, info := range rl.requests {
		if now.After(info.expiresAt) {
			delete(rl.requests, key)
		}
	}
}

// Handler returns the Fiber middleware.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		now := time.Now()

		rl.mu.Lock()
		info, exists := rl.requests[key]
		if !exists || now.After(info.expiresAt) {
			rl.requests[key] = &requestInfo{count: 1, expiresAt: now.Add(rl.window)}
			rl.mu.Unlock()
			return c.Next()
		}

		info.count++
		over := info.count > rl.limit
		rl.mu.Unlock()

		if over {
			return apperr.ErrRateLimited
		}
		return c.Next()
	}
}
