package ratelimiter

import (
	"sync"
	"time"
)

// SlidingWindowCounter rate-limits with a bucketed sliding window. It trades
// the exactness of the log approach for constant memory while staying far more
// accurate at window boundaries than a fixed counter.
type SlidingWindowCounter struct {
	limit      int
	window     time.Duration
	numBuckets int
	bucketSize time.Duration
	buckets    []int
	current    int
	lastSlide  time.Time
	mu         sync.Mutex
}

// NewSlidingWindowCounter allows limit requests per window, tracked across
// numBuckets sub-intervals. A non-positive numBuckets falls back to 10.
func NewSlidingWindowCounter(limit int, window time.Duration, numBuckets int) *SlidingWindowCounter {
	if numBuckets <= 0 {
		numBuckets = 10
	}
	return &SlidingWindowCounter{
		limit:      limit,
		window:     window,
		numBuckets: numBuckets,
		bucketSize: window / time.Duration(numBuckets),
		buckets:    make([]int, numBuckets),
		lastSlide:  time.Now(),
	}
}

// slide advances the window, zeroing buckets that have fallen out of it.
func (swc *SlidingWindowCounter) slide() {
	now := time.Now()
	steps := int(now.Sub(swc.lastSlide) / swc.bucketSize)
	if steps <= 0 {
		return
	}

	if steps >= swc.numBuckets {
		for i := range swc.buckets {
			swc.buckets[i] = 0
		}
	} else {
		for i := 1; i <= steps; i++ {
			swc.buckets[(swc.current+i)%swc.numBuckets] = 0
		}
	}
	swc.current = (swc.current + steps) % swc.numBuckets
	swc.lastSlide = now
}

// Allow slides the window forward and admits the request if the total count
// across all buckets is under the limit.
func (swc *SlidingWindowCounter) Allow() bool {
	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.slide()

	total := 0
	for _, n := range swc.buckets {
		total += n
	}

	if total < swc.limit {
		swc.buckets[swc.current]++
		return true
	}
	return false
}
