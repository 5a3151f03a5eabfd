// Package ratelimit keeps one token bucket per API client.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter manages rate limits for multiple clients of the local API
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	perHour int
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

// NewLimiter creates a limiter allowing requestsPerHour per client with the
// given burst
func NewLimiter(requestsPerHour int, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		perHour: requestsPerHour,
		rate:    rate.Limit(float64(requestsPerHour) / 3600.0),
		burst:   burst,
		now:     time.Now,
	}
}

// PerHour is the configured hourly allowance
func (l *Limiter) PerHour() int {
	return l.perHour
}

func (l *Limiter) get(clientID string) *bucket {
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[clientID] = b
	}
	b.lastSeen = l.now()
	return b
}

// Allow consumes one token for clientID. It also reports the whole tokens
// left afterwards.
func (l *Limiter) Allow(clientID string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.get(clientID)
	now := l.now()
	ok := b.limiter.AllowN(now, 1)
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return ok, remaining
}

// Prune forgets clients idle for longer than idle and returns how many were
// removed
func (l *Limiter) Prune(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for id, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, id)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked clients
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
