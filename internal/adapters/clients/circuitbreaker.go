package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen/qod-service/internal/platform/config"
)

// State is a breaker state: closed, half-open or open.
type State = gobreaker.State

const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// TransitionFunc observes breaker state changes for service.
type TransitionFunc func(service string, from, to State)

// newCircuitBreaker trips after MaxFailures consecutive failed calls, stays
// open for Timeout, then lets HalfOpenLimit probes through. A call the
// caller cancelled is not held against the upstream.
func newCircuitBreaker(
	name string,
	cfg config.CircuitBreakerConfig,
	logger *slog.Logger,
	onTransition TransitionFunc,
) *gobreaker.CircuitBreaker[*http.Response] {
	trips := uint32(max(cfg.MaxFailures, 1))     //nolint:gosec // bounded by config validation
	probes := uint32(max(cfg.HalfOpenLimit, 1)) //nolint:gosec // bounded by config validation

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: probes,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trips
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)

			if onTransition != nil {
				onTransition(name, from, to)
			}
		},
	})
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
