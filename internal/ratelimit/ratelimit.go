// Package ratelimit throttles outbound requests with golang.org/x/time/rate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

// Limiter is a token bucket sized in requests per minute. A nil *Limiter
// never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute, with a burst of 10% of
// the rate (at least 1). It returns nil when requestsPerMinute <= 0.
func New(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}

	burst := max(requestsPerMinute/10, 1)

	return &Limiter{
		limiter: rate.NewLimiter(perMinute(requestsPerMinute), burst),
	}
}

// NewWithBurst creates a limiter with an explicit per-second rate and burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is cancelled.
// When the next token lies beyond the context deadline it fails at once
// with RATE_LIMIT_EXCEEDED.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}
	return nil
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	if l == nil {
		return 0
	}
	return l.limiter.Tokens()
}

// SetLimit updates the rate.
func (l *Limiter) SetLimit(requestsPerMinute int) {
	if l == nil {
		return
	}
	l.limiter.SetLimit(perMinute(requestsPerMinute))
}

func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}
