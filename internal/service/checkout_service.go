package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jasminetntu/bunny-boutique/internal/cache"
	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/metrics"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

// CheckoutService converts a user's cart into a durable order. The whole
// sequence holds the user's lock so no cart mutation can interleave, and the
// write set commits as one transaction in the repository.
type CheckoutService struct {
	orders       repository.OrderRepository
	carts        repository.CartRepository
	profiles     repository.ProfileRepository
	cache        cache.CartCache
	locks        *UserLocks
	shippingRate float64
	metrics      *metrics.Metrics
}

func NewCheckoutService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	profiles repository.ProfileRepository,
	cartCache cache.CartCache,
	locks *UserLocks,
	shippingRate float64,
	m *metrics.Metrics,
) *CheckoutService {
	return &CheckoutService{
		orders:       orders,
		carts:        carts,
		profiles:     profiles,
		cache:        cartCache,
		locks:        locks,
		shippingRate: shippingRate,
		metrics:      m,
	}
}

// Checkout validates preconditions before any write: the user must have a
// shipping profile and a non-empty cart. On failure nothing is written and
// the cart is untouched; the caller retries the whole request.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			s.metrics.CheckoutFailures.WithLabelValues("profile_missing").Inc()
			return nil, ErrProfileMissing
		}
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		s.metrics.CheckoutFailures.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		UserID:         userID,
		Date:           time.Now().UTC(),
		Address:        profile.Address,
		City:           profile.City,
		State:          profile.State,
		Zip:            profile.Zip,
		ShippingAmount: s.shippingRate,
		Total:          cart.Total + s.shippingRate,
	}
	for _, item := range cart.Items {
		order.Lines = append(order.Lines, domain.OrderLine{
			ProductID:       item.Product.ID,
			SalesPrice:      item.Product.Price * (1 - item.DiscountPercent),
			Quantity:        item.Quantity,
			DiscountPercent: item.DiscountPercent,
		})
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.metrics.CheckoutFailures.WithLabelValues("storage").Inc()
		log.Printf("repo create order error: %v \n", err)
		return nil, err
	}

	s.invalidateCache(userID)
	s.metrics.OrdersPlaced.Inc()
	return order, nil
}

func (s *CheckoutService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v \n", err)
	}
}
