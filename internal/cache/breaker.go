package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

// BreakerCache wraps a CartCache with a circuit breaker so that a dead Redis
// degrades to plain database reads instead of adding a timeout to every
// request. An open breaker reports every Get as a miss.
type BreakerCache struct {
	inner CartCache
	cb    *gobreaker.CircuitBreaker[*domain.Cart]
}

func NewBreakerCache(inner CartCache) *BreakerCache {
	settings := gobreaker.Settings{
		Name:    "cart-cache",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A miss is a healthy answer, only transport errors count as failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
	}
	return &BreakerCache{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*domain.Cart](settings),
	}
}

func (b *BreakerCache) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := b.cb.Execute(func() (*domain.Cart, error) {
		return b.inner.Get(ctx, userID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCacheMiss
	}
	return cart, err
}

func (b *BreakerCache) Set(ctx context.Context, userID int64, cart *domain.Cart) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.inner.Set(ctx, userID, cart)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, userID int64) error {
	_, err := b.cb.Execute(func() (*domain.Cart, error) {
		return nil, b.inner.Delete(ctx, userID)
	})
	return err
}
