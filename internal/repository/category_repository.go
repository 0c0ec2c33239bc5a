package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT category_id, name, description FROM categories ORDER BY category_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT category_id, name, description FROM categories WHERE category_id = $1`

	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category by id: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING category_id`

	if err := r.db.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $1, description = $2 WHERE category_id = $3`

	res, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
