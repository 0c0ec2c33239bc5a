package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

const cartItemColumns = `sc.quantity, sc.discount_percent, p.product_id, p.name, p.price,
	p.category_id, p.description, p.subcategory, p.stock, p.featured, p.image_url`

func scanCartItem(row interface{ Scan(...any) error }) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(
		&item.Quantity,
		&item.DiscountPercent,
		&item.Product.ID,
		&item.Product.Name,
		&item.Product.Price,
		&item.Product.CategoryID,
		&item.Product.Description,
		&item.Product.SubCategory,
		&item.Product.Stock,
		&item.Product.Featured,
		&item.Product.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetCart joins every cart row with the products table so each line carries a
// live product snapshot. A user with no rows gets an empty cart, not an error.
func (r *Repository) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	query := `SELECT ` + cartItemColumns + `
	          FROM shopping_cart AS sc
	          INNER JOIN products AS p ON sc.product_id = p.product_id
	          WHERE sc.user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	cart := domain.NewCart(userID)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Add(*item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return cart, nil
}

func (r *Repository) GetItem(ctx context.Context, userID, productID int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + `
	          FROM shopping_cart AS sc
	          INNER JOIN products AS p ON sc.product_id = p.product_id
	          WHERE sc.user_id = $1 AND sc.product_id = $2`

	item, err := scanCartItem(r.db.QueryRowContext(ctx, query, userID, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotInCart
	}
	if err != nil {
		return nil, fmt.Errorf("query cart item: %w", err)
	}
	return item, nil
}

func (r *Repository) InsertItem(ctx context.Context, userID, productID int64, quantity int) error {
	query := `INSERT INTO shopping_cart (user_id, product_id, quantity) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, productID, quantity); err != nil {
		return fmt.Errorf("insert cart item: %w", err)
	}
	return nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	query := `UPDATE shopping_cart SET quantity = $1 WHERE user_id = $2 AND product_id = $3`

	res, err := r.db.ExecContext(ctx, query, quantity, userID, productID)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotInCart
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, userID, productID int64) error {
	query := `DELETE FROM shopping_cart WHERE user_id = $1 AND product_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotInCart
	}
	return nil
}

// DeleteCart removes every line for the user. Deleting an already empty cart
// is not an error.
func (r *Repository) DeleteCart(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
