package services

import (
	"errors"
	"fmt"
	"time"

	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/sony/gobreaker"
)

// NewStoreBreaker builds the circuit breaker guarding database access.
// Only infrastructure faults count as failures; the caller-error
// taxonomy (not found, validation) must not trip the breaker.
func NewStoreBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, models.ErrNotFound) ||
				errors.Is(err, models.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// execute runs a store operation through the breaker. Caller errors
// pass through untouched; everything else (driver faults, open
// breaker) surfaces as the retryable ErrStoreUnavailable so callers can
// tell a wrong request from a struggling store.
func execute[T any](breaker *gobreaker.CircuitBreaker, op func() (T, error)) (T, error) {
	result, err := breaker.Execute(func() (interface{}, error) {
		return op()
	})
	if err != nil {
		var zero T
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
			return zero, err
		}
		return zero, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	value, _ := result.(T)
	return value, nil
}

func isTransient(err error) bool {
	return errors.Is(err, models.ErrStoreUnavailable)
}
