package domain

import "time"

// Product is a catalog entry. Price is in minor currency units (e.g. whole
// Rupiah), kept as int64 so money math is exact.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
