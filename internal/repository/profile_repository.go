package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `SELECT user_id, first_name, last_name, phone, email, address, city, state, zip
	          FROM profiles WHERE user_id = $1`

	p := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Email,
		&p.Address,
		&p.City,
		&p.State,
		&p.Zip,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile by user id: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProfile(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, first_name, last_name, phone, email, address, city, state, zip)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.Email,
		p.Address,
		p.City,
		p.State,
		p.Zip,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles
	          SET first_name = $1, last_name = $2, phone = $3, email = $4,
	              address = $5, city = $6, state = $7, zip = $8
	          WHERE user_id = $9`

	res, err := r.db.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.Email,
		p.Address,
		p.City,
		p.State,
		p.Zip,
		p.UserID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}
