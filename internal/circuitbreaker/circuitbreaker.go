// Package circuitbreaker wraps sony/gobreaker with typed results and
// apperror-coded failures.
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

// Config configures a circuit breaker.
type Config struct {
	Name string

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval after which closed-state counts are cleared. Zero never clears.
	Interval time.Duration

	// Timeout spent open before moving to half-open.
	Timeout time.Duration

	// ConsecutiveFailures that trip the breaker.
	ConsecutiveFailures uint32

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)

	// IsSuccessful decides whether an error counts against the breaker.
	// Context cancellation never does.
	IsSuccessful func(err error) bool
}

// DefaultConfig returns settings suitable for RPC and HTTP reads.
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             15 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// CircuitBreaker executes functions returning T behind a breaker.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New builds a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	isSuccessful := cfg.IsSuccessful
	if isSuccessful == nil {
		isSuccessful = func(err error) bool { return err == nil }
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: cfg.OnStateChange,
		IsSuccessful: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return true
			}
			return isSuccessful(err)
		},
	}

	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](settings),
	}
}

// Execute runs fn unless the breaker is open.
// Rejections are returned as CIRCUIT_OPEN / CIRCUIT_HALF_OPEN app errors.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := c.cb.Execute(fn)
	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		var zero T
		return zero, apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err),
			apperror.WithContext(c.cb.Name()))
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		var zero T
		return zero, apperror.New(apperror.CodeCircuitHalfOpen,
			apperror.WithCause(err),
			apperror.WithContext(c.cb.Name()))
	}

	return result, err
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

// Name returns the breaker name.
func (c *CircuitBreaker[T]) Name() string {
	return c.cb.Name()
}
