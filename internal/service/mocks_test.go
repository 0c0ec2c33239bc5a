package service

import (
	"context"
	"sync"

	"github.com/jasminetntu/bunny-boutique/internal/cache"
	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

type cartKey struct {
	userID    int64
	productID int64
}

type cartRow struct {
	quantity        int
	discountPercent float64
}

// mockStore backs the cart, product, profile and order repositories with
// in-memory maps. It is shared between mocks so CreateOrder can clear the
// cart the way the real transaction does.
type mockStore struct {
	m        sync.RWMutex
	products map[int64]domain.Product
	profiles map[int64]domain.Profile
	cart     map[cartKey]cartRow
	orders   []*domain.Order

	cartErr        error
	createOrderErr error
	nextOrderID    int64
}

func newMockStore() *mockStore {
	return &mockStore{
		products:    map[int64]domain.Product{},
		profiles:    map[int64]domain.Profile{},
		cart:        map[cartKey]cartRow{},
		nextOrderID: 1,
	}
}

// --- repository.CartRepository ---

func (s *mockStore) GetCart(_ context.Context, userID int64) (*domain.Cart, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.cartErr != nil {
		return nil, s.cartErr
	}
	cart := domain.NewCart(userID)
	for key, row := range s.cart {
		if key.userID != userID {
			continue
		}
		cart.Add(domain.CartItem{
			Product:         s.products[key.productID],
			Quantity:        row.quantity,
			DiscountPercent: row.discountPercent,
		})
	}
	return cart, nil
}

func (s *mockStore) GetItem(_ context.Context, userID, productID int64) (*domain.CartItem, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.cartErr != nil {
		return nil, s.cartErr
	}
	row, ok := s.cart[cartKey{userID, productID}]
	if !ok {
		return nil, repository.ErrItemNotInCart
	}
	return &domain.CartItem{
		Product:         s.products[productID],
		Quantity:        row.quantity,
		DiscountPercent: row.discountPercent,
	}, nil
}

func (s *mockStore) InsertItem(_ context.Context, userID, productID int64, quantity int) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.cartErr != nil {
		return s.cartErr
	}
	s.cart[cartKey{userID, productID}] = cartRow{quantity: quantity}
	return nil
}

func (s *mockStore) UpdateItemQuantity(_ context.Context, userID, productID int64, quantity int) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.cartErr != nil {
		return s.cartErr
	}
	key := cartKey{userID, productID}
	row, ok := s.cart[key]
	if !ok {
		return repository.ErrItemNotInCart
	}
	row.quantity = quantity
	s.cart[key] = row
	return nil
}

func (s *mockStore) RemoveItem(_ context.Context, userID, productID int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	key := cartKey{userID, productID}
	if _, ok := s.cart[key]; !ok {
		return repository.ErrItemNotInCart
	}
	delete(s.cart, key)
	return nil
}

func (s *mockStore) DeleteCart(_ context.Context, userID int64) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.cartErr != nil {
		return s.cartErr
	}
	s.clearCartLocked(userID)
	return nil
}

func (s *mockStore) clearCartLocked(userID int64) {
	for key := range s.cart {
		if key.userID == userID {
			delete(s.cart, key)
		}
	}
}

// --- repository.ProductRepository (only GetProduct matters here) ---

func (s *mockStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (s *mockStore) Search(context.Context, domain.ProductFilter) ([]*domain.Product, error) {
	return nil, nil
}
func (s *mockStore) ListByCategory(context.Context, int64) ([]*domain.Product, error) {
	return nil, nil
}
func (s *mockStore) ListFeatured(context.Context) ([]*domain.Product, error) { return nil, nil }
func (s *mockStore) CreateProduct(context.Context, *domain.Product) error    { return nil }
func (s *mockStore) UpdateProduct(context.Context, *domain.Product) error    { return nil }
func (s *mockStore) DeleteProduct(context.Context, int64) error              { return nil }

// --- repository.ProfileRepository ---

func (s *mockStore) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &p, nil
}

func (s *mockStore) CreateProfile(context.Context, *domain.Profile) error { return nil }
func (s *mockStore) UpdateProfile(context.Context, *domain.Profile) error { return nil }

// --- repository.OrderRepository ---

func (s *mockStore) CreateOrder(_ context.Context, order *domain.Order) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.createOrderErr != nil {
		return s.createOrderErr
	}
	order.ID = s.nextOrderID
	s.nextOrderID++
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		order.Lines[i].ID = int64(i + 1)
	}
	s.orders = append(s.orders, order)
	s.clearCartLocked(order.UserID)
	return nil
}

func (s *mockStore) GetOrder(context.Context, int64) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (s *mockStore) ListOrdersByUser(context.Context, int64) ([]*domain.Order, error) {
	return nil, nil
}

func (s *mockStore) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (s *mockStore) MarkEventProcessed(context.Context, int64) error { return nil }

func (s *mockStore) orderCount() int {
	s.m.RLock()
	defer s.m.RUnlock()
	return len(s.orders)
}

// --- cache.CartCache ---

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, int64) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ int64, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}
