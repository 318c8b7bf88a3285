// Package resilience provides the circuit breaker shared by outbound calls.
// Calls are never retried; the breaker only fails fast while a dependency is down.
package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds circuit breaker parameters.
type Config struct {
	MaxRequests  uint32        // half-open probes
	Interval     time.Duration // closed: counter reset period
	Timeout      time.Duration // open -> half-open
	MinRequests  uint32        // requests needed before the ratio is evaluated
	FailureRatio float64
}

// DefaultConfig returns the breaker settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxRequests:  3,
		Interval:     30 * time.Second,
		Timeout:      10 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// NewCircuitBreaker creates a circuit breaker with the given settings.
func NewCircuitBreaker(name string, cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio
		},
	})
}

// IsOpen reports whether err was produced by the breaker refusing the call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
