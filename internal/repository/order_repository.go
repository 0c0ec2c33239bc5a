package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

type orderPlacedLine struct {
	ProductID       int64   `json:"product_id"`
	SalesPrice      float64 `json:"sales_price"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

type orderPlacedEvent struct {
	OrderID        int64             `json:"order_id"`
	UserID         int64             `json:"user_id"`
	Total          float64           `json:"total"`
	ShippingAmount float64           `json:"shipping_amount"`
	Lines          []orderPlacedLine `json:"lines"`
}

// CreateOrder runs the whole checkout write set in one transaction: order
// header, one row per line, deletion of the user's cart and the order.placed
// outbox event. If anything fails the cart is left untouched.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer tx.Rollback()

	headerQuery := `INSERT INTO orders (user_id, date, address, city, state, zip, shipping_amount, total)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	                RETURNING order_id`

	err = tx.QueryRowContext(ctx, headerQuery,
		order.UserID,
		order.Date,
		order.Address,
		order.City,
		order.State,
		order.Zip,
		order.ShippingAmount,
		order.Total,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	lineQuery := `INSERT INTO order_line_items (order_id, product_id, sales_price, quantity, discount_percent)
	              VALUES ($1, $2, $3, $4, $5)
	              RETURNING order_line_id`

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		err = tx.QueryRowContext(ctx, lineQuery,
			line.OrderID,
			line.ProductID,
			line.SalesPrice,
			line.Quantity,
			line.DiscountPercent,
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err = insertOrderPlacedEvent(ctx, tx, order); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout transaction: %w", err)
	}
	return nil
}

func insertOrderPlacedEvent(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	event := orderPlacedEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Total:          order.Total,
		ShippingAmount: order.ShippingAmount,
	}
	for _, line := range order.Lines {
		event.Lines = append(event.Lines, orderPlacedLine{
			ProductID:       line.ProductID,
			SalesPrice:      line.SalesPrice,
			Quantity:        line.Quantity,
			DiscountPercent: line.DiscountPercent,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	query := `INSERT INTO outbox_events (event_id, event_type, aggregate_id, payload)
	          VALUES ($1, $2, $3, $4)`

	_, err = tx.ExecContext(ctx, query,
		uuid.NewString(),
		"order.placed",
		strconv.FormatInt(order.ID, 10),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT order_id, user_id, date, address, city, state, zip, shipping_amount, total
	          FROM orders WHERE order_id = $1`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Date,
		&order.Address,
		&order.City,
		&order.State,
		&order.Zip,
		&order.ShippingAmount,
		&order.Total,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if order.Lines, err = r.listOrderLines(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT order_id, user_id, date, address, city, state, zip, shipping_amount, total
	          FROM orders WHERE user_id = $1 ORDER BY order_id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Date,
			&order.Address,
			&order.City,
			&order.State,
			&order.Zip,
			&order.ShippingAmount,
			&order.Total,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		if order.Lines, err = r.listOrderLines(ctx, order.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) listOrderLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	query := `SELECT order_line_id, order_id, product_id, sales_price, quantity, discount_percent
	          FROM order_line_items WHERE order_id = $1 ORDER BY order_line_id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.SalesPrice,
			&line.Quantity,
			&line.DiscountPercent,
		); err != nil {
			return nil, fmt.Errorf("scan order line row: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, event_id, event_type, aggregate_id, payload, created_at, processed_at
	          FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		ev := &OutboxEvent{}
		if err := rows.Scan(
			&ev.ID,
			&ev.EventID,
			&ev.EventType,
			&ev.AggregateID,
			&ev.Payload,
			&ev.CreatedAt,
			&ev.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func (r *Repository) MarkEventProcessed(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}
