package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the aggregates behind the dashboard.
type Repository interface {
	SalesTotalBetween(ctx context.Context, start, end time.Time) (int64, error)
	BestSellers(ctx context.Context, limit int) ([]BestSeller, error)
	LowStock(ctx context.Context, threshold, limit int) ([]LowStockProduct, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) SalesTotalBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(grand_total), 0) FROM transactions WHERE created_at >= $1 AND created_at < $2`,
		start, end).Scan(&total)
	return total, err
}

func (r *repository) BestSellers(ctx context.Context, limit int) ([]BestSeller, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT d.product_id, p.title, SUM(d.qty)::int
		 FROM transaction_details d
		 JOIN products p ON p.id = d.product_id
		 GROUP BY d.product_id, p.title
		 ORDER BY SUM(d.qty) DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BestSeller
	for rows.Next() {
		var b BestSeller
		if err := rows.Scan(&b.ProductID, &b.Title, &b.Sold); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) LowStock(ctx context.Context, threshold, limit int) ([]LowStockProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, stock FROM products WHERE stock <= $1 ORDER BY stock ASC LIMIT $2`,
		threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Title, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
