package cache

import (
	"context"
	"errors"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Set(ctx context.Context, userID int64, cart *domain.Cart) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop is used when no Redis address is configured; every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, int64) (*domain.Cart, error) { return nil, ErrCacheMiss }
func (Noop) Set(context.Context, int64, *domain.Cart) error   { return nil }
func (Noop) Delete(context.Context, int64) error              { return nil }
