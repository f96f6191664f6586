package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// ErrOutOfStock reports a checkout or cart add that asks for more units
// than the product has left.
var ErrOutOfStock = errors.New("stok produk tidak mencukupi")

// Repository persists carts and completed transactions.
type Repository interface {
	CartItems(ctx context.Context, cashierID int64) ([]CartItem, error)
	UpsertCartItem(ctx context.Context, cashierID, productID int64, qty int) error
	DeleteCartItem(ctx context.Context, cashierID, cartID int64) error
	Checkout(ctx context.Context, t Transaction, items []CartItem) (Transaction, error)
	FindByInvoice(ctx context.Context, invoice string) (Receipt, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CartItems(ctx context.Context, cashierID int64) ([]CartItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ca.id, ca.cashier_id, ca.product_id, p.title, p.barcode, p.sell_price, p.buy_price,
		        ca.qty, ca.price, ca.created_at
		 FROM carts ca
		 JOIN products p ON p.id = ca.product_id
		 WHERE ca.cashier_id = $1
		 ORDER BY ca.created_at DESC`,
		cashierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.CashierID, &it.ProductID, &it.Title, &it.Barcode,
			&it.SellPrice, &it.BuyPrice, &it.Qty, &it.Price, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertCartItem adds qty units of a product to the cashier's cart, merging
// into an existing line for the same product. The stock check and the line
// write happen in one transaction so two adds cannot both pass the check.
func (r *repository) UpsertCartItem(ctx context.Context, cashierID, productID int64, qty int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var sellPrice int64
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT sell_price, stock FROM products WHERE id = $1 FOR UPDATE`,
			productID).Scan(&sellPrice, &stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}

		var existingID int64
		var existingQty int
		err = tx.QueryRow(ctx,
			`SELECT id, qty FROM carts WHERE cashier_id = $1 AND product_id = $2`,
			cashierID, productID).Scan(&existingID, &existingQty)
		switch {
		case err == nil:
			total := existingQty + qty
			if total > stock {
				return ErrOutOfStock
			}
			_, err = tx.Exec(ctx,
				`UPDATE carts SET qty = $2, price = $3 WHERE id = $1`,
				existingID, total, sellPrice*int64(total))
			return err
		case errors.Is(err, pgx.ErrNoRows):
			if qty > stock {
				return ErrOutOfStock
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO carts (cashier_id, product_id, qty, price, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				cashierID, productID, qty, sellPrice*int64(qty), time.Now())
			return err
		default:
			return err
		}
	})
}

func (r *repository) DeleteCartItem(ctx context.Context, cashierID, cartID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM carts WHERE id = $1 AND cashier_id = $2`, cartID, cashierID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Checkout writes the sale in one transaction: header row, detail rows,
// stock decrements, per-line profit rows, and the cart purge. Any failure
// rolls the whole sale back.
func (r *repository) Checkout(ctx context.Context, t Transaction, items []CartItem) (Transaction, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if err := tx.QueryRow(ctx,
			`INSERT INTO transactions (cashier_id, customer_id, invoice, cash, change, discount, grand_total, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			t.CashierID, t.CustomerID, t.Invoice, t.Cash, t.Change, t.Discount, t.GrandTotal, now,
		).Scan(&t.ID, &t.CreatedAt); err != nil {
			return err
		}

		for _, it := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO transaction_details (transaction_id, product_id, qty, price, created_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				t.ID, it.ProductID, it.Qty, it.Price, now); err != nil {
				return err
			}

			tag, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2, updated_at = $3 WHERE id = $1 AND stock >= $2`,
				it.ProductID, it.Qty, now)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrOutOfStock
			}

			profit := (it.SellPrice - it.BuyPrice) * int64(it.Qty)
			if _, err := tx.Exec(ctx,
				`INSERT INTO profits (transaction_id, total, created_at) VALUES ($1, $2, $3)`,
				t.ID, profit, now); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `DELETE FROM carts WHERE cashier_id = $1`, t.CashierID)
		return err
	})
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (r *repository) FindByInvoice(ctx context.Context, invoice string) (Receipt, error) {
	var rec Receipt
	t := &rec.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, cashier_id, customer_id, invoice, cash, change, discount, grand_total, created_at
		 FROM transactions WHERE invoice = $1`,
		invoice).Scan(&t.ID, &t.CashierID, &t.CustomerID, &t.Invoice, &t.Cash, &t.Change,
		&t.Discount, &t.GrandTotal, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, shared.ErrNotFound
		}
		return Receipt{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.transaction_id, d.product_id, p.title, d.qty, d.price, d.created_at
		 FROM transaction_details d
		 JOIN products p ON p.id = d.product_id
		 WHERE d.transaction_id = $1
		 ORDER BY d.id`,
		t.ID)
	if err != nil {
		return Receipt{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.ProductID, &d.Title, &d.Qty, &d.Price, &d.CreatedAt); err != nil {
			return Receipt{}, err
		}
		rec.Details = append(rec.Details, d)
	}
	return rec, rows.Err()
}
