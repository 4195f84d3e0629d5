// Package ratelimit throttles /api requests per client address with a token
// bucket. It is off by default.
package ratelimit

import "time"

// Limiter decides whether the caller identified by key may proceed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(key string) (allowed bool, info Info)
	Close()
}

// Info feeds the X-RateLimit-* response headers.
type Info struct {
	Limit      int           // requests per minute
	Remaining  int           // whole tokens left in the bucket
	ResetAt    time.Time     // when the bucket is full again
	RetryAfter time.Duration // set only when denied
}
