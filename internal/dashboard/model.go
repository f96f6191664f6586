package dashboard

// DayTotal is one day's sales sum for the weekly chart.
type DayTotal struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}

// BestSeller is one product on the best-sellers board.
type BestSeller struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Sold      int    `json:"sold"`
}

// LowStockProduct is a product close to running out.
type LowStockProduct struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Stock     int    `json:"stock"`
}

// Overview is the full dashboard payload.
type Overview struct {
	TodaySales  int64             `json:"today_sales"`
	Week        []DayTotal        `json:"week"`
	WeekChart   string            `json:"week_chart"`
	BestSellers []BestSeller      `json:"best_sellers"`
	LowStock    []LowStockProduct `json:"low_stock"`
}
