package arith

import (
	"context"
	"errors"
	"time"

	"github.com/pior/arith/wire"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards client round trips against a failing server.
type CircuitBreaker = gobreaker.CircuitBreaker[wire.Response]

// NewCircuitBreakerConfig returns a function that creates a circuit breaker for a server.
// This is a helper for common use cases.
//
// Only transport failures count against the breaker: UNKNOWN and BAD_DATA
// replies, unparseable replies and caller cancellation are successes from the
// breaker's point of view.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *CircuitBreaker {
	return func(serverAddr string) *CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
		}
		return gobreaker.NewCircuitBreaker[wire.Response](settings)
	}
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return !wire.ShouldCloseConnection(err)
}
