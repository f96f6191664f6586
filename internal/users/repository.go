package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// Repository persists users and their role assignments.
type Repository interface {
	List(ctx context.Context, search string, page shared.Pagination) ([]User, int, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User, roleIDs []int64) (User, error)
	Update(ctx context.Context, id int64, name, email string, passwordHash *string, roleIDs []int64) error
	Delete(ctx context.Context, id int64) error
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// List returns one page of users. Role sets are attached with a single
// follow-up query instead of one lookup per row.
func (r *repository) List(ctx context.Context, search string, page shared.Pagination) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, password, created_at, updated_at
		 FROM users
		 WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	var ids []int64
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		byUser, err := r.rolesForUsers(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Roles = byUser[out[i].ID]
		}
	}
	return out, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password, created_at, updated_at FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	byUser, err := r.rolesForUsers(ctx, []int64{id})
	if err != nil {
		return User{}, err
	}
	u.Roles = byUser[id]
	return u, nil
}

func (r *repository) Create(ctx context.Context, u User, roleIDs []int64) (User, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if err := tx.QueryRow(ctx,
			`INSERT INTO users (name, email, password, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)
			 RETURNING id, created_at, updated_at`,
			u.Name, u.Email, u.PasswordHash, now).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		for _, rid := range roleIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
				u.ID, rid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Update writes the changed columns and replaces the role set wholesale.
// A nil passwordHash leaves the stored hash untouched.
func (r *repository) Update(ctx context.Context, id int64, name, email string, passwordHash *string, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var tag pgconn.CommandTag
		var err error
		if passwordHash != nil {
			tag, err = tx.Exec(ctx,
				`UPDATE users SET name = $2, email = $3, password = $4, updated_at = $5 WHERE id = $1`,
				id, name, email, *passwordHash, time.Now())
		} else {
			tag, err = tx.Exec(ctx,
				`UPDATE users SET name = $2, email = $3, updated_at = $4 WHERE id = $1`,
				id, name, email, time.Now())
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}

		rows, err := tx.Query(ctx, `SELECT role_id FROM user_roles WHERE user_id = $1`, id)
		if err != nil {
			return err
		}
		current := map[int64]struct{}{}
		for rows.Next() {
			var rid int64
			if err := rows.Scan(&rid); err != nil {
				rows.Close()
				return err
			}
			current[rid] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		wanted := map[int64]struct{}{}
		for _, rid := range roleIDs {
			wanted[rid] = struct{}{}
			if _, ok := current[rid]; !ok {
				if _, err := tx.Exec(ctx,
					`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
					id, rid); err != nil {
					return err
				}
			}
		}
		for rid := range current {
			if _, ok := wanted[rid]; !ok {
				if _, err := tx.Exec(ctx,
					`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`,
					id, rid); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND id <> $2)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

func (r *repository) rolesForUsers(ctx context.Context, userIDs []int64) (map[int64][]RoleRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ur.user_id, ro.id, ro.name
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = ANY($1)
		 ORDER BY ro.name`,
		userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byUser := map[int64][]RoleRef{}
	for rows.Next() {
		var userID int64
		var ref RoleRef
		if err := rows.Scan(&userID, &ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		byUser[userID] = append(byUser[userID], ref)
	}
	return byUser, rows.Err()
}
