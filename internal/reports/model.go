package reports

import "time"

// SaleRow is one transaction as shown on the sales report.
type SaleRow struct {
	ID         int64     `json:"id"`
	Invoice    string    `json:"invoice"`
	Cashier    string    `json:"cashier"`
	Customer   string    `json:"customer"`
	GrandTotal int64     `json:"grand_total"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfitRow is one per-sale profit record as shown on the profit report.
type ProfitRow struct {
	ID        int64     `json:"id"`
	Invoice   string    `json:"invoice"`
	Total     int64     `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// Range is an inclusive reporting window.
type Range struct {
	Start time.Time
	End   time.Time
}
