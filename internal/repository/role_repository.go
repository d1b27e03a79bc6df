package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RoleRepository) Assign(ctx context.Context, userID string, role string) error {
	const query = `
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
		ON CONFLICT (user_id, role) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, role)
	return err
}

// Replace drops every role the user holds and assigns the given one. Users
// carry exactly one role through the admin surface; the set-valued claim in
// the access token leaves room for more.
func (r *RoleRepository) Replace(ctx context.Context, userID string, role string) error {
	const query = `
		WITH cleared AS (
			DELETE FROM user_roles WHERE user_id = $1
		)
		INSERT INTO user_roles (user_id, role) VALUES ($1, $2)
	`
	_, err := r.pool.Exec(ctx, query, userID, role)
	return err
}
