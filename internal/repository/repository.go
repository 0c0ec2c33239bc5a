package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemNotInCart    = errors.New("item not found in cart")
	ErrProfileExists    = errors.New("profile already exists for user")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type ProductRepository interface {
	Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
	ListFeatured(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	CreateProfile(ctx context.Context, p *domain.Profile) error
	UpdateProfile(ctx context.Context, p *domain.Profile) error
}

// CartRepository stores bare (user, product, quantity) rows; GetCart joins
// each row with the products table so callers always see a live snapshot.
type CartRepository interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	GetItem(ctx context.Context, userID, productID int64) (*domain.CartItem, error)
	InsertItem(ctx context.Context, userID, productID int64, quantity int) error
	UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	DeleteCart(ctx context.Context, userID int64) error
}

// OrderRepository persists completed checkouts. CreateOrder commits the order
// header, every line, the cart deletion and the outbox event as one
// transaction, so a failed checkout leaves the cart exactly as it was.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id int64) error
}

type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
