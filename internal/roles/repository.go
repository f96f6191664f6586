package roles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// Repository persists roles and their permission assignments.
type Repository interface {
	List(ctx context.Context, search string, page shared.Pagination) ([]Role, int, error)
	All(ctx context.Context) ([]Role, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, name string, permissionIDs []int64) (Role, error)
	Update(ctx context.Context, id int64, name string, permissionIDs []int64) error
	Delete(ctx context.Context, id int64) error
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, search string, page shared.Pagination) ([]Role, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM roles WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at
		 FROM roles
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		perms, err := r.rolePermissions(ctx, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
		out[i].Permissions = perms
	}
	return out, total, nil
}

func (r *repository) All(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`,
		id).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	perms, err := r.rolePermissions(ctx, id)
	if err != nil {
		return Role{}, err
	}
	role.Permissions = perms
	return role, nil
}

func (r *repository) Create(ctx context.Context, name string, permissionIDs []int64) (Role, error) {
	var role Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if err := tx.QueryRow(ctx,
			`INSERT INTO roles (name, created_at, updated_at) VALUES ($1, $2, $2)
			 RETURNING id, name, created_at, updated_at`,
			name, now).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
				role.ID, pid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// Update renames the role and replaces its permission set wholesale. Only
// the symmetric difference is written.
func (r *repository) Update(ctx context.Context, id int64, name string, permissionIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE roles SET name = $2, updated_at = $3 WHERE id = $1`,
			id, name, time.Now())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		rows, err := tx.Query(ctx, `SELECT permission_id FROM role_permissions WHERE role_id = $1`, id)
		if err != nil {
			return err
		}
		current := map[int64]struct{}{}
		for rows.Next() {
			var pid int64
			if err := rows.Scan(&pid); err != nil {
				rows.Close()
				return err
			}
			current[pid] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		wanted := map[int64]struct{}{}
		for _, pid := range permissionIDs {
			wanted[pid] = struct{}{}
			if _, ok := current[pid]; !ok {
				if _, err := tx.Exec(ctx,
					`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
					id, pid); err != nil {
					return err
				}
			}
		}
		for pid := range current {
			if _, ok := wanted[pid]; !ok {
				if _, err := tx.Exec(ctx,
					`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`,
					id, pid); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE lower(name) = lower($1) AND id <> $2)`,
		name, excludeID).Scan(&taken)
	return taken, err
}

func (r *repository) rolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.name FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1 ORDER BY p.name`,
		roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		perms = append(perms, name)
	}
	return perms, rows.Err()
}
