package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jakaprima/vending-machine/internal/logger"
)

// BreakerConfig controls when the session store is considered down.
type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerStore fails fast with ErrUnavailable while the wrapped store keeps
// failing, instead of letting every request wait on a dead Redis.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next Store, cfg BreakerConfig) *BreakerStore {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}

	settings := gobreaker.Settings{
		Name:    "session-store",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// a caller giving up is not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &BreakerStore{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerStore) Get(ctx context.Context) (*Session, error) {
	return execute(b, func() (*Session, error) { return b.next.Get(ctx) })
}

func (b *BreakerStore) Create(ctx context.Context, s Session) (bool, error) {
	return execute(b, func() (bool, error) { return b.next.Create(ctx, s) })
}

func (b *BreakerStore) Release(ctx context.Context, processID string) (bool, error) {
	return execute(b, func() (bool, error) { return b.next.Release(ctx, processID) })
}

func (b *BreakerStore) Take(ctx context.Context) (*Session, error) {
	return execute(b, func() (*Session, error) { return b.next.Take(ctx) })
}

// State reports the breaker state for health checks.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

func execute[T any](b *BreakerStore, fn func() (T, error)) (T, error) {
	var zero T

	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return zero, err
	}

	return v.(T), nil
}
