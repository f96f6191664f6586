package products

import "time"

// CategoryRef is the slice of a category a product listing needs.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is one sellable item. Prices are stored in whole rupiah.
type Product struct {
	ID          int64       `json:"id"`
	CategoryID  int64       `json:"category_id"`
	Category    CategoryRef `json:"category"`
	Image       string      `json:"image"`
	Barcode     string      `json:"barcode"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	BuyPrice    int64       `json:"buy_price"`
	SellPrice   int64       `json:"sell_price"`
	Stock       int         `json:"stock"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
