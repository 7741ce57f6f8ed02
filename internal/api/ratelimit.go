package api

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter keeps one token bucket per client. A client may burst the
// whole window's budget and then refills at budget/window.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
		now:     time.Now,
	}
}

// allow reports whether key may make another request now.
func (l *rateLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

// retryAfter is the Retry-After header value in seconds: the time for one
// token to refill.
func (l *rateLimiter) retryAfter() string {
	secs := int((l.window / time.Duration(l.burst)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// prune drops clients idle for longer than a full window. Their bucket
// would be full again, so forgetting them changes nothing.
func (l *rateLimiter) prune() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// cleanupLoop runs prune once per window until ctx is cancelled.
func (l *rateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}
