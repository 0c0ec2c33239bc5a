package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func seedCatalog(t *testing.T, repo *Repository) (plush, mug *domain.Product) {
	ctx := context.Background()

	category := &domain.Category{Name: "Gifts"}
	require.NoError(t, repo.CreateCategory(ctx, category))

	plush = &domain.Product{
		Name:        "Bunny plush",
		Price:       10.00,
		CategoryID:  category.ID,
		SubCategory: "toys",
		Stock:       25,
		Featured:    true,
	}
	require.NoError(t, repo.CreateProduct(ctx, plush))

	mug = &domain.Product{
		Name:        "Carrot mug",
		Price:       5.00,
		CategoryID:  category.ID,
		SubCategory: "kitchen",
		Stock:       12,
	}
	require.NoError(t, repo.CreateProduct(ctx, mug))

	return plush, mug
}

func TestCartRepository_Lifecycle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	plush, mug := seedCatalog(t, repo)
	const userID = int64(1)

	// empty cart, not an error
	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	require.NoError(t, repo.InsertItem(ctx, userID, plush.ID, 1))
	require.NoError(t, repo.InsertItem(ctx, userID, mug.ID, 2))

	item, err := repo.GetItem(ctx, userID, plush.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "Bunny plush", item.Product.Name)
	assert.Equal(t, 10.00, item.Product.Price)

	require.NoError(t, repo.UpdateItemQuantity(ctx, userID, plush.ID, 4))

	cart, err = repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.Items[plush.ID].Quantity)
	assert.InDelta(t, 4*10.00+2*5.00, cart.Total, 0.001)

	require.NoError(t, repo.RemoveItem(ctx, userID, mug.ID))
	assert.ErrorIs(t, repo.RemoveItem(ctx, userID, mug.ID), ErrItemNotInCart)

	require.NoError(t, repo.DeleteCart(ctx, userID))
	// deleting an empty cart is fine
	require.NoError(t, repo.DeleteCart(ctx, userID))

	cart, err = repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartRepository_UpdateMissingItem(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.UpdateItemQuantity(context.Background(), 1, 12345, 3)
	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestCreateOrder_CommitsWholeWriteSet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	plush, mug := seedCatalog(t, repo)
	const userID = int64(7)

	require.NoError(t, repo.InsertItem(ctx, userID, plush.ID, 1))
	require.NoError(t, repo.InsertItem(ctx, userID, mug.ID, 2))

	order := &domain.Order{
		UserID:         userID,
		Date:           time.Now().UTC(),
		Address:        "123 Meadow Ln",
		City:           "Portland",
		State:          "OR",
		Zip:            "97201",
		ShippingAmount: 4.99,
		Total:          24.99,
		Lines: []domain.OrderLine{
			{ProductID: plush.ID, SalesPrice: 10.00, Quantity: 1},
			{ProductID: mug.ID, SalesPrice: 5.00, Quantity: 2},
		},
	}

	require.NoError(t, repo.CreateOrder(ctx, order))
	assert.NotZero(t, order.ID)

	fetched, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, fetched.UserID)
	assert.Equal(t, "123 Meadow Ln", fetched.Address)
	assert.InDelta(t, 24.99, fetched.Total, 0.001)
	require.Len(t, fetched.Lines, 2)
	for _, line := range fetched.Lines {
		assert.Equal(t, order.ID, line.OrderID)
		assert.NotZero(t, line.ID)
	}

	// the cart was cleared inside the same transaction
	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// and the order.placed event is waiting in the outbox
	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "order.placed", events[0].EventType)
	assert.JSONEq(t, `{
		"order_id": `+itoa(order.ID)+`,
		"user_id": 7,
		"total": 24.99,
		"shipping_amount": 4.99,
		"lines": [
			{"product_id": `+itoa(plush.ID)+`, "sales_price": 10, "quantity": 1, "discount_percent": 0},
			{"product_id": `+itoa(mug.ID)+`, "sales_price": 5, "quantity": 2, "discount_percent": 0}
		]
	}`, string(events[0].Payload))

	require.NoError(t, repo.MarkEventProcessed(ctx, events[0].ID))
	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateOrder_RollsBackOnBadLine(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	plush, _ := seedCatalog(t, repo)
	const userID = int64(9)

	require.NoError(t, repo.InsertItem(ctx, userID, plush.ID, 1))

	order := &domain.Order{
		UserID:         userID,
		Date:           time.Now().UTC(),
		Address:        "123 Meadow Ln",
		City:           "Portland",
		State:          "OR",
		Zip:            "97201",
		ShippingAmount: 4.99,
		Total:          14.99,
		Lines: []domain.OrderLine{
			{ProductID: plush.ID, SalesPrice: 10.00, Quantity: 1},
			// violates the products foreign key, forcing a mid-transaction failure
			{ProductID: 999999, SalesPrice: 1.00, Quantity: 1},
		},
	}

	err := repo.CreateOrder(ctx, order)
	require.Error(t, err)

	// nothing committed: no order, no events, cart untouched
	orders, err := repo.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[plush.ID].Quantity)
}

func TestProductSearch_OptionalFilters(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	plush, mug := seedCatalog(t, repo)

	// no filters: everything
	all, err := repo.Search(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	minPrice := 6.00
	expensive, err := repo.Search(ctx, domain.ProductFilter{MinPrice: &minPrice})
	require.NoError(t, err)
	require.Len(t, expensive, 1)
	assert.Equal(t, plush.ID, expensive[0].ID)

	sub := "kitchen"
	maxPrice := 20.00
	kitchen, err := repo.Search(ctx, domain.ProductFilter{SubCategory: &sub, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, mug.ID, kitchen[0].ID)

	featured, err := repo.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, plush.ID, featured[0].ID)
}

func TestProfileRepository_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.GetProfile(ctx, 5)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile := &domain.Profile{
		UserID:    5,
		FirstName: "Jasmine",
		LastName:  "Nguyen",
		Email:     "jasmine@example.com",
		Address:   "123 Meadow Ln",
		City:      "Portland",
		State:     "OR",
		Zip:       "97201",
	}
	require.NoError(t, repo.CreateProfile(ctx, profile))
	assert.ErrorIs(t, repo.CreateProfile(ctx, profile), ErrProfileExists)

	profile.City = "Salem"
	require.NoError(t, repo.UpdateProfile(ctx, profile))

	fetched, err := repo.GetProfile(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Salem", fetched.City)
	assert.Equal(t, "Jasmine", fetched.FirstName)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
