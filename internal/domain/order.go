package domain

import "time"

// Order is a completed sale header ("transaction" in the storefront UI).
// Total is fixed at submission time from the cart, never re-derived.
type Order struct {
	ID        int64     `json:"id"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderLine is one product's quantity and captured unit price within an
// order. Price is the cart's add-time price, so later catalog price edits do
// not rewrite historical sales. The product reference is by id only and must
// tolerate the product being deleted later.
type OrderLine struct {
	OrderID   int64 `json:"transaction_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

// SoldLine is an order line annotated with its product's display name,
// normalized at the store boundary (deleted products get a fallback label
// there). Input shape for the top-products aggregation.
type SoldLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
}

// TopProduct is one entry of the dashboard's best-seller list.
type TopProduct struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
}
