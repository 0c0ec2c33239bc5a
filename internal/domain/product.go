package domain

type Product struct {
	ID          int64   `json:"product_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
	Description string  `json:"description"`
	SubCategory string  `json:"subcategory"`
	Stock       int     `json:"stock"`
	Featured    bool    `json:"featured"`
	ImageURL    string  `json:"image_url"`
}

type Category struct {
	ID          int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductFilter holds optional search predicates. A nil field means the
// predicate is not applied at all, so callers never pass magic values like -1.
type ProductFilter struct {
	CategoryID  *int64
	MinPrice    *float64
	MaxPrice    *float64
	SubCategory *string
}
