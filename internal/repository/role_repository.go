package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// RoleRepository defines persistence access for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetAll(ctx context.Context) ([]*domain.Role, error)
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	UpdatePermissions(ctx context.Context, id string, permissions []domain.Permission) error
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, permissions)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		role.Name,
		domain.PermissionStrings(role.Permissions),
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) GetAll(ctx context.Context) ([]*domain.Role, error) {
	const query = `
        SELECT id, name, permissions, created_at, updated_at
        FROM roles ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	const query = `
        SELECT id, name, permissions, created_at, updated_at
        FROM roles WHERE id=$1`

	return scanRole(r.pool.QueryRow(ctx, query, id))
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `
        SELECT id, name, permissions, created_at, updated_at
        FROM roles WHERE name=$1`

	return scanRole(r.pool.QueryRow(ctx, query, name))
}

func (r *roleRepository) UpdatePermissions(ctx context.Context, id string, permissions []domain.Permission) error {
	const query = `
        UPDATE roles SET permissions=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, domain.PermissionStrings(permissions), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	var permissions []string
	if err := row.Scan(
		&role.ID,
		&role.Name,
		&permissions,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	role.Permissions = domain.PermissionsFromStrings(permissions)
	return &role, nil
}
