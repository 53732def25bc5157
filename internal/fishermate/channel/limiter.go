package channel

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a per-sender token bucket. Buckets idle for longer than the
// refill period are dropped on the next call, so the map does not grow
// with every number that ever wrote in.
type Limiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	buckets map[string]*bucket
	sweepAt time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows perMinute messages per sender per minute with a burst
// of the same size. perMinute <= 0 disables limiting.
func NewLimiter(perMinute int) *Limiter {
	l := &Limiter{
		burst:   perMinute,
		idle:    2 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
	} else {
		l.limit = rate.Inf
	}
	return l
}

// Allow reports whether sender may send one more message now.
func (l *Limiter) Allow(sender string) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.sweepAt) {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.idle {
				delete(l.buckets, k)
			}
		}
		l.sweepAt = now.Add(l.idle)
	}

	b, ok := l.buckets[sender]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[sender] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// Len returns the number of tracked senders.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
