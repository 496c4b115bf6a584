package ratelimiter

// RateLimiter decides whether an incoming request may proceed.
type RateLimiter interface {
	// Allow reports whether the request is within the configured rate.
	Allow() bool
}
