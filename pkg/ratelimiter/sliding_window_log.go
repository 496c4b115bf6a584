package ratelimiter

import (
	"container/list"
	"sync"
	"time"
)

// SlidingWindowLog rate-limits by keeping the timestamp of every admitted
// request and counting those that fall inside the trailing window. Exact, but
// memory grows with the limit.
type SlidingWindowLog struct {
	limit  int
	window time.Duration
	log    *list.List // ordered request timestamps
	mu     sync.Mutex
}

// NewSlidingWindowLog allows limit requests in any trailing window.
func NewSlidingWindowLog(limit int, window time.Duration) *SlidingWindowLog {
	return &SlidingWindowLog{
		limit:  limit,
		window: window,
		log:    list.New(),
	}
}

// Allow evicts timestamps older than the window and admits the request if the
// remaining log is under the limit.
func (swl *SlidingWindowLog) Allow() bool {
	swl.mu.Lock()
	defer swl.mu.Unlock()

	now := time.Now()
	boundary := now.Add(-swl.window)

	for e := swl.log.Front(); e != nil; {
		next := e.Next()
		if !e.Value.(time.Time).Before(boundary) {
			// Timestamps are ordered, the rest are inside the window.
			break
		}
		swl.log.Remove(e)
		e = next
	}

	if swl.log.Len() < swl.limit {
		swl.log.PushBack(now)
		return true
	}
	return false
}
