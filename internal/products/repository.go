package products

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/shared"
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context, search string, page shared.Pagination) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	FindByBarcode(ctx context.Context, barcode string) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, id int64) error
	BarcodeTaken(ctx context.Context, barcode string, excludeID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `p.id, p.category_id, p.image, p.barcode, p.title, p.description,
	 p.buy_price, p.sell_price, p.stock, p.created_at, p.updated_at, c.id, c.name`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Image, &p.Barcode, &p.Title, &p.Description,
		&p.BuyPrice, &p.SellPrice, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Name)
	return p, err
}

func (r *repository) List(ctx context.Context, search string, page shared.Pagination) ([]Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN categories c ON c.id = p.category_id
		 WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%')
		 ORDER BY p.created_at DESC
		 LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN categories c ON c.id = p.category_id
		 WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) FindByBarcode(ctx context.Context, barcode string) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN categories c ON c.id = p.category_id
		 WHERE p.barcode = $1`, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (category_id, image, barcode, title, description, buy_price, sell_price, stock, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id, created_at, updated_at`,
		p.CategoryID, p.Image, p.Barcode, p.Title, p.Description,
		p.BuyPrice, p.SellPrice, p.Stock, now).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET category_id = $2, image = $3, barcode = $4, title = $5, description = $6,
		     buy_price = $7, sell_price = $8, stock = $9, updated_at = $10
		 WHERE id = $1`,
		p.ID, p.CategoryID, p.Image, p.Barcode, p.Title, p.Description,
		p.BuyPrice, p.SellPrice, p.Stock, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) BarcodeTaken(ctx context.Context, barcode string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE barcode = $1 AND id <> $2)`,
		barcode, excludeID).Scan(&taken)
	return taken, err
}
