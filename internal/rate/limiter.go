package rate

import (
	"context"
	"fmt"
	"time"
)

// IssuanceCounter counts OTP records issued for a rate-limit key within a
// trailing window. The OTP repository implements it; the records themselves
// are the only persisted counter state.
type IssuanceCounter interface {
	CountIssuedSince(ctx context.Context, rateLimitKey string, since time.Time) (int, error)
}

// Quota describes the window at check time.
type Quota struct {
	Count     int `json:"count"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Limiter bounds OTP issuance per rate-limit key to Limit per rolling Window.
// It is a counting window, not a token bucket: bursts up to the limit are
// allowed within any trailing window, recomputed fresh on every check.
type Limiter struct {
	counter IssuanceCounter
	limit   int
	window  time.Duration
}

func NewLimiter(counter IssuanceCounter, limit int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Check counts issuances for the key in the trailing window and reports the
// remaining quota. Remaining == 0 means the caller must refuse issuance.
func (l *Limiter) Check(ctx context.Context, rateLimitKey string) (*Quota, error) {
	since := time.Now().Add(-l.window)

	count, err := l.counter.CountIssuedSince(ctx, rateLimitKey, since)
	if err != nil {
		return nil, fmt.Errorf("check rate limit for %s: %w", rateLimitKey, err)
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &Quota{Count: count, Limit: l.limit, Remaining: remaining}, nil
}
