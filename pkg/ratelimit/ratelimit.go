// Package ratelimit implements a fixed-window request limiter keyed by
// client identity. Windows are process-lifetime only.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a single Allow call. A denial is a normal
// return value, never an error.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Stats is a snapshot of limiter counters.
type Stats struct {
	Allowed       int64 `json:"allowed"`
	Denied        int64 `json:"denied"`
	ActiveWindows int   `json:"active_windows"`
}

type window struct {
	start time.Time
	count int
}

// Limiter tracks one active window per client. All mutation happens under a
// single mutex; contention is low enough that sharding is not worth it.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit    int
	duration time.Duration

	allowed int64
	denied  int64

	now func() time.Time
}

func NewLimiter(limit int, duration time.Duration) *Limiter {
	if limit <= 0 {
		limit = 20
	}
	if duration <= 0 {
		duration = time.Minute
	}
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow charges one request against the client's current window. The request
// that trips the limit is counted and then denied, so a window's count never
// exceeds limit+1.
func (l *Limiter) Allow(clientID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[clientID]
	if !ok || now.Sub(w.start) >= l.duration {
		l.windows[clientID] = &window{start: now, count: 1}
		l.allowed++
		return Decision{Allowed: true}
	}

	if w.count <= l.limit {
		w.count++
	}
	if w.count > l.limit {
		l.denied++
		remaining := l.duration - now.Sub(w.start)
		retryAfter := int(remaining / time.Second)
		if remaining%time.Second != 0 || retryAfter == 0 {
			retryAfter++
		}
		return Decision{Allowed: false, RetryAfterSeconds: retryAfter}
	}

	l.allowed++
	return Decision{Allowed: true}
}

// Stats returns current counters. Expired windows still held in the map are
// counted as active; they are recycled lazily on the next Allow.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Allowed:       l.allowed,
		Denied:        l.denied,
		ActiveWindows: len(l.windows),
	}
}
