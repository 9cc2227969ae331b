// Package resilience wraps outbound provider calls with a circuit breaker,
// a per-call timeout, and an opt-in retry policy.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds circuit breaker settings for one provider.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is how many probe requests pass through in half-open state.
	// Default: 1
	MaxRequests uint32

	// OpenTimeout is how long the breaker stays open before probing.
	// Default: 60 seconds
	OpenTimeout time.Duration

	// ReadyToTrip decides when the breaker opens. Nil means defaultReadyToTrip.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// defaultReadyToTrip opens the breaker once at least 5 calls were made and
// half of them failed.
func defaultReadyToTrip(counts gobreaker.Counts) bool {
	ratio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && ratio >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 60 * time.Second
	}
	readyToTrip := cfg.ReadyToTrip
	if readyToTrip == nil {
		readyToTrip = defaultReadyToTrip
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: maxRequests,
		Timeout:     openTimeout,
		ReadyToTrip: readyToTrip,
	})
}
