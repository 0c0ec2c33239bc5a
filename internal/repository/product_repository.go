package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

const productColumns = `product_id, name, price, category_id, description, subcategory, stock, featured, image_url`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.CategoryID,
		&p.Description,
		&p.SubCategory,
		&p.Stock,
		&p.Featured,
		&p.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Search builds the WHERE clause from whichever filters are actually set.
func (r *Repository) Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	var conditions []string
	var args []any

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.SubCategory != nil {
		args = append(args, *filter.SubCategory)
		conditions = append(conditions, fmt.Sprintf("subcategory = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY product_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}

func (r *Repository) ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return r.Search(ctx, domain.ProductFilter{CategoryID: &categoryID})
}

func (r *Repository) ListFeatured(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE featured ORDER BY product_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, price, category_id, description, subcategory, stock, featured, image_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING product_id`

	err := r.db.QueryRowContext(ctx, query,
		p.Name,
		p.Price,
		p.CategoryID,
		p.Description,
		p.SubCategory,
		p.Stock,
		p.Featured,
		p.ImageURL,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products
	          SET name = $1, price = $2, category_id = $3, description = $4,
	              subcategory = $5, stock = $6, featured = $7, image_url = $8
	          WHERE product_id = $9`

	res, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Price,
		p.CategoryID,
		p.Description,
		p.SubCategory,
		p.Stock,
		p.Featured,
		p.ImageURL,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
