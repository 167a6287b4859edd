package limiter

import (
	"context"
	"sync"
	"time"
)

// RateLimiter caps the number of requests started within any one-second window.
type RateLimiter struct {
	requestTimes []time.Time
	maxRequests  int
	mu           sync.Mutex
	now          func() time.Time
}

func NewRateLimiter(maxRequests int) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &RateLimiter{
		requestTimes: make([]time.Time, 0, maxRequests),
		maxRequests:  maxRequests,
		now:          time.Now,
	}
}

// Allow records a request and returns true when the window has room for it.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	oneSecondAgo := now.Add(-1 * time.Second)

	validTimes := r.requestTimes[:0]
	for _, t := range r.requestTimes {
		if t.After(oneSecondAgo) {
			validTimes = append(validTimes, t)
		}
	}
	r.requestTimes = validTimes

	if len(r.requestTimes) < r.maxRequests {
		r.requestTimes = append(r.requestTimes, now)
		return true
	}
	return false
}

// Wait blocks until Allow succeeds, polling every delay, or until ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	for !r.Allow() {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
