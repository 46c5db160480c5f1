// Package ratelimit bounds outbound scanner calls with a sliding-window
// limiter. Saturated callers are delayed, never rejected.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/tickergrid/screener/internal/metrics"
)

// Window is the trailing admission interval.
const Window = time.Minute

// Limiter admits at most max calls per trailing window. It keeps the
// timestamps of admitted calls; entries older than the window are trimmed
// on every admission attempt.
type Limiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	admitted []time.Time
}

// New creates a limiter allowing requestsPerMinute admissions per minute.
func New(requestsPerMinute int) *Limiter {
	return newWithWindow(requestsPerMinute, Window)
}

func newWithWindow(max int, window time.Duration) *Limiter {
	return &Limiter{max: max, window: window}
}

// Acquire blocks until the call is admitted or ctx is done. When the window
// is saturated it waits window-(now-oldest), then re-evaluates the window
// from scratch; an explicit loop rather than recursion, so pathological
// configurations cannot grow the stack.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait, admitted := l.tryAdmit()
		if admitted {
			return nil
		}
		if wait <= 0 {
			continue
		}

		metrics.RateLimitWaitSeconds.Observe(wait.Seconds())

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err() //nolint:wrapcheck // ctx errors pass through unchanged
		}
	}
}

// tryAdmit trims the window and either records an admission or returns the
// time until the oldest retained timestamp leaves the window.
func (l *Limiter) tryAdmit() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.trim(now)

	if len(l.admitted) < l.max {
		l.admitted = append(l.admitted, now)
		return 0, true
	}
	if len(l.admitted) == 0 {
		// max <= 0: nothing to wait out, retry after a full window.
		return l.window, false
	}
	return l.window - now.Sub(l.admitted[0]), false
}

func (l *Limiter) trim(now time.Time) {
	cut := 0
	for cut < len(l.admitted) && now.Sub(l.admitted[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.admitted = append(l.admitted[:0], l.admitted[cut:]...)
	}
}

// Pending returns the number of admissions currently inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.trim(time.Now())
	return len(l.admitted)
}
