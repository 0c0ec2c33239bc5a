package domain

// CartItem is one line in a user's cart. The embedded product is a live
// snapshot joined in at read time, so the price always reflects the current
// catalog state rather than the state at the time the line was added.
type CartItem struct {
	Product         Product `json:"product"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// LineTotal is quantity x unit price, with the line discount applied.
func (i CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.Product.Price * (1 - i.DiscountPercent)
}

// Cart holds at most one line per product for a single user.
type Cart struct {
	UserID int64              `json:"user_id"`
	Items  map[int64]CartItem `json:"items"`
	Total  float64            `json:"total"`
}

func NewCart(userID int64) *Cart {
	return &Cart{
		UserID: userID,
		Items:  map[int64]CartItem{},
	}
}

func (c *Cart) Add(item CartItem) {
	c.Items[item.Product.ID] = item
	c.Total += item.LineTotal()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
