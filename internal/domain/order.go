package domain

import "time"

type OrderLine struct {
	ID              int64   `json:"order_line_id"`
	OrderID         int64   `json:"order_id"`
	ProductID       int64   `json:"product_id"`
	SalesPrice      float64 `json:"sales_price"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Order is created exactly once per checkout and never updated afterwards.
// The address fields are a snapshot of the user's profile at checkout time.
type Order struct {
	ID             int64       `json:"order_id"`
	UserID         int64       `json:"user_id"`
	Date           time.Time   `json:"date"`
	Address        string      `json:"address"`
	City           string      `json:"city"`
	State          string      `json:"state"`
	Zip            string      `json:"zip"`
	ShippingAmount float64     `json:"shipping_amount"`
	Total          float64     `json:"total"`
	Lines          []OrderLine `json:"lines"`
}
