// Package ratelimiter implements per-client token buckets that expire when idle.
package ratelimiter

import (
	"sync"
	"time"
)

// bucket implements a token bucket rate limiter
type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	clientID   string
	parent     *ClientRateLimiter
}

// ClientRateLimiter manages one bucket per client identity (usually an IP address)
type ClientRateLimiter struct {
	buckets        map[string]*bucket
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a limiter refilling rate tokens per second up to capacity.
// Buckets unused for expirationTime are dropped.
func New(rate float64, capacity float64, expirationTime time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// PerMinute allows n requests per minute with a burst of n.
func PerMinute(n float64) *ClientRateLimiter {
	return New(n/60, max(1, n), time.Hour)
}

func (l *ClientRateLimiter) cleanup(clientID string) {
	l.mu.Lock()
	delete(l.buckets, clientID)
	l.mu.Unlock()
}

// resetTimer must be called with b.mu held
func (b *bucket) resetTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.expirationTime, func() {
		b.parent.cleanup(b.clientID)
	})
}

func (l *ClientRateLimiter) getBucket(clientID string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[clientID]
	l.mu.RUnlock()
	if exists {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists = l.buckets[clientID]; exists {
		return b
	}

	b = &bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: time.Now(),
		clientID:   clientID,
		parent:     l,
	}
	l.buckets[clientID] = b
	return b
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.parent != nil {
		b.resetTimer()
	}

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow reports whether a request from clientID may proceed
func (l *ClientRateLimiter) Allow(clientID string) bool {
	return l.getBucket(clientID).allow()
}

// Stop cleans up all timers
func (l *ClientRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.buckets {
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	}
}
