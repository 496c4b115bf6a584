package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowCounter rate-limits by counting requests inside fixed, aligned
// time windows. Simple and cheap, at the cost of allowing up to 2x the limit
// across a window boundary.
type FixedWindowCounter struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	mu          sync.Mutex
}

// NewFixedWindowCounter allows limit requests per window.
func NewFixedWindowCounter(limit int, window time.Duration) *FixedWindowCounter {
	return &FixedWindowCounter{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Allow resets the counter when the window has rolled over, then admits the
// request if the count is under the limit.
func (c *FixedWindowCounter) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.After(c.windowStart.Add(c.window)) {
		c.windowStart = now
		c.count = 0
	}

	if c.count < c.limit {
		c.count++
		return true
	}
	return false
}
