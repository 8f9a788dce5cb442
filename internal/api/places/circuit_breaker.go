package places

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// tripAfterConsecutiveFailures bounds how many failing lookups one recommendation request
// spends on an unhealthy Maps API before the rest of its lookups short-circuit.
const tripAfterConsecutiveFailures = 3

type breakerKey struct{}

// WithRequestBreaker returns a context carrying a circuit breaker that lives as long as
// the request. Calls made with it share the breaker; calls without one are unguarded.
func (c *Client) WithRequestBreaker(ctx context.Context) context.Context {
	return context.WithValue(ctx, breakerKey{}, newCircuitBreaker(serviceName, c.logger))
}

func breakerFrom(ctx context.Context) *gobreaker.CircuitBreaker[[]byte] {
	cb, _ := ctx.Value(breakerKey{}).(*gobreaker.CircuitBreaker[[]byte])
	return cb
}

// newCircuitBreaker opens after consecutive failures and stays open for the rest of a
// normal request lifetime.
func newCircuitBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:         name,
		MaxRequests:  1,
		Timeout:      30 * time.Second,
		IsSuccessful: isBreakerSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= tripAfterConsecutiveFailures
			if shouldTrip {
				logger.Warn("Opening circuit",
					slog.String("breaker", name),
					slog.Any("consecutive_failures", counts.ConsecutiveFailures))
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state transition",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// isBreakerSuccess keeps caller cancellation out of the failure counts.
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}
