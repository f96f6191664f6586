package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/shared"
)

// Repository reads completed sales and profit rows for reporting.
type Repository interface {
	SalesBetween(ctx context.Context, rng Range, page shared.Pagination) ([]SaleRow, int, error)
	AllSalesBetween(ctx context.Context, rng Range) ([]SaleRow, error)
	SalesTotal(ctx context.Context, rng Range) (int64, error)
	ProfitsBetween(ctx context.Context, rng Range, page shared.Pagination) ([]ProfitRow, int, error)
	AllProfitsBetween(ctx context.Context, rng Range) ([]ProfitRow, error)
	ProfitsTotal(ctx context.Context, rng Range) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// The window is inclusive on both ends; the end date is widened to the end
// of its day so "2026-01-31" covers the whole of January 31.
const saleSelect = `
	SELECT t.id, t.invoice, u.name,
	       COALESCE(c.name, 'Umum'),
	       t.grand_total, t.created_at
	FROM transactions t
	JOIN users u ON u.id = t.cashier_id
	LEFT JOIN customers c ON c.id = t.customer_id
	WHERE t.created_at >= $1 AND t.created_at < $2
	ORDER BY t.created_at DESC`

func (r *repository) SalesBetween(ctx context.Context, rng Range, page shared.Pagination) ([]SaleRow, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE created_at >= $1 AND created_at < $2`,
		rng.Start, rng.End).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, saleSelect+` LIMIT $3 OFFSET $4`,
		rng.Start, rng.End, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanSales(rows)
	return out, total, err
}

func (r *repository) AllSalesBetween(ctx context.Context, rng Range) ([]SaleRow, error) {
	rows, err := r.pool.Query(ctx, saleSelect, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSales(rows)
}

func (r *repository) SalesTotal(ctx context.Context, rng Range) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(grand_total), 0) FROM transactions WHERE created_at >= $1 AND created_at < $2`,
		rng.Start, rng.End).Scan(&total)
	return total, err
}

const profitSelect = `
	SELECT pr.id, t.invoice, pr.total, pr.created_at
	FROM profits pr
	JOIN transactions t ON t.id = pr.transaction_id
	WHERE pr.created_at >= $1 AND pr.created_at < $2
	ORDER BY pr.created_at DESC`

func (r *repository) ProfitsBetween(ctx context.Context, rng Range, page shared.Pagination) ([]ProfitRow, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM profits WHERE created_at >= $1 AND created_at < $2`,
		rng.Start, rng.End).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, profitSelect+` LIMIT $3 OFFSET $4`,
		rng.Start, rng.End, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := scanProfits(rows)
	return out, total, err
}

func (r *repository) AllProfitsBetween(ctx context.Context, rng Range) ([]ProfitRow, error) {
	rows, err := r.pool.Query(ctx, profitSelect, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfits(rows)
}

func (r *repository) ProfitsTotal(ctx context.Context, rng Range) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM profits WHERE created_at >= $1 AND created_at < $2`,
		rng.Start, rng.End).Scan(&total)
	return total, err
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSales(rows pgxRows) ([]SaleRow, error) {
	var out []SaleRow
	for rows.Next() {
		var s SaleRow
		if err := rows.Scan(&s.ID, &s.Invoice, &s.Cashier, &s.Customer, &s.GrandTotal, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanProfits(rows pgxRows) ([]ProfitRow, error) {
	var out []ProfitRow
	for rows.Next() {
		var p ProfitRow
		if err := rows.Scan(&p.ID, &p.Invoice, &p.Total, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
