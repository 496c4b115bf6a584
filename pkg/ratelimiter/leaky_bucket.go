package ratelimiter

import (
	"sync"
	"time"
)

// LeakyBucket rate-limits with the leaky bucket algorithm. Requests fill the
// bucket and drain at a fixed rate, which smooths bursts into a steady flow.
type LeakyBucket struct {
	rate     float64 // requests drained per second
	capacity float64
	level    float64
	lastLeak time.Time
	mu       sync.Mutex
}

// NewLeakyBucket creates an empty bucket draining at rate requests per second
// with room for capacity queued requests.
func NewLeakyBucket(rate float64, capacity int) *LeakyBucket {
	return &LeakyBucket{
		rate:     rate,
		capacity: float64(capacity),
		lastLeak: time.Now(),
	}
}

// Allow drains the bucket for the elapsed time and admits the request if the
// bucket is not full.
func (lb *LeakyBucket) Allow() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := time.Now()
	if drained := now.Sub(lb.lastLeak).Seconds() * lb.rate; drained > 0 {
		lb.level -= drained
		if lb.level < 0 {
			lb.level = 0
		}
		lb.lastLeak = now
	}

	if lb.level < lb.capacity {
		lb.level++
		return true
	}
	return false
}
