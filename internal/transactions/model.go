package transactions

import "time"

// CartItem is one line in a cashier's open cart. Price is the line total
// (sell price times qty) in whole rupiah.
type CartItem struct {
	ID        int64     `json:"id"`
	CashierID int64     `json:"cashier_id"`
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Barcode   string    `json:"barcode"`
	SellPrice int64     `json:"sell_price"`
	BuyPrice  int64     `json:"buy_price"`
	Qty       int       `json:"qty"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is one completed sale.
type Transaction struct {
	ID         int64     `json:"id"`
	CashierID  int64     `json:"cashier_id"`
	CustomerID *int64    `json:"customer_id"`
	Invoice    string    `json:"invoice"`
	Cash       int64     `json:"cash"`
	Change     int64     `json:"change"`
	Discount   int64     `json:"discount"`
	GrandTotal int64     `json:"grand_total"`
	CreatedAt  time.Time `json:"created_at"`
}

// Detail is one sold line of a transaction.
type Detail struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	ProductID     int64     `json:"product_id"`
	Title         string    `json:"title"`
	Qty           int       `json:"qty"`
	Price         int64     `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

// Receipt bundles a transaction with its lines for printing.
type Receipt struct {
	Transaction Transaction `json:"transaction"`
	Details     []Detail    `json:"details"`
}
