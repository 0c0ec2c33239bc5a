package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jasminetntu/bunny-boutique/internal/cache"
	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

// CartService owns the single active cart per user. Every mutator returns the
// full updated cart so callers always observe a server-authoritative view.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	locks    *UserLocks
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache, locks *UserLocks) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		cache:    cartCache,
		locks:    locks,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	// Use singleflight to collapse concurrent cache misses for the same user
	v, err, _ := s.sfg.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil {
			return nil, errGet
		}

		// Fill the cache before returning. A deferred fill could land after a
		// mutator's invalidation and resurrect a stale cart for a full TTL.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			log.Printf("cache set error: %v \n", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem is the upsert-increment: a missing line is created with quantity 1,
// an existing one gets quantity+1. The read-then-write runs under the user's
// lock so concurrent adds never lose an update.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, userID, productID)
	switch {
	case errors.Is(err, repository.ErrItemNotInCart):
		if errAdd := s.repo.InsertItem(ctx, userID, productID, 1); errAdd != nil {
			log.Printf("repo insert item error: %v \n", errAdd)
			return nil, errAdd
		}
	case err != nil:
		return nil, err
	default:
		if errUpdate := s.repo.UpdateItemQuantity(ctx, userID, productID, item.Quantity+1); errUpdate != nil {
			log.Printf("repo update item quantity error: %v \n", errUpdate)
			return nil, errUpdate
		}
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

// UpdateQuantity only operates on an existing line: quantity > 0 overwrites,
// quantity <= 0 deletes the line so a zero quantity is never stored.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if _, err := s.repo.GetItem(ctx, userID, productID); err != nil {
		if errors.Is(err, repository.ErrItemNotInCart) {
			return nil, ErrNotInCart
		}
		return nil, err
	}

	if quantity > 0 {
		if err := s.repo.UpdateItemQuantity(ctx, userID, productID, quantity); err != nil {
			log.Printf("repo update item quantity error: %v \n", err)
			return nil, err
		}
	} else {
		if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
			log.Printf("repo remove item error: %v \n", err)
			return nil, err
		}
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		log.Printf("repo delete cart error: %v \n", err)
		return nil, err
	}

	s.invalidateCache(userID)
	return s.repo.GetCart(ctx, userID)
}

func (s *CartService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}
