package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key in memory. Buckets idle for
// more than two cleanup intervals are evicted by a background goroutine that
// runs until Close.
type MemoryLimiter struct {
	every           rate.Limit
	burst           int
	perMinute       int
	cleanupInterval time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	stopped bool
}

func NewMemoryLimiter(requestsPerMinute, burst int, cleanupInterval time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		every:           rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:           burst,
		perMinute:       requestsPerMinute,
		cleanupInterval: cleanupInterval,
		buckets:         make(map[string]*bucket),
		stop:            make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

func (m *MemoryLimiter) Allow(key string) (bool, Info) {
	now := time.Now()

	m.mu.Lock()
	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(m.every, m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now
	m.mu.Unlock()

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)

	info := Info{
		Limit:     m.perMinute,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}
	if missing := float64(m.burst) - tokens; missing > 0 {
		info.ResetAt = now.Add(time.Duration(missing / float64(m.every) * float64(time.Second)))
	}
	if !allowed {
		// until one token is back
		info.RetryAfter = time.Duration((1 - tokens) / float64(m.every) * float64(time.Second))
	}

	return allowed, info
}

// Len reports how many keys currently hold a bucket.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func (m *MemoryLimiter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.stop)
	}
}

func (m *MemoryLimiter) evictLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *MemoryLimiter) evictIdle(now time.Time) {
	cutoff := now.Add(-2 * m.cleanupInterval)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}
