package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinical-portal/internal/domain"
)

// UserRepository defines persistence access for portal accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, roleID string) ([]*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateRole(ctx context.Context, userID, roleID string) error
	// AddRevokedPermission appends to the deny-list in a single statement.
	// Returns false when the permission was already revoked.
	AddRevokedPermission(ctx context.Context, userID string, permission domain.Permission) (bool, error)
	// RemoveRevokedPermission removes from the deny-list in a single
	// statement. Returns false when the permission was not revoked.
	RemoveRevokedPermission(ctx context.Context, userID string, permission domain.Permission) (bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, password_hash, role_id, revoked_permissions,
        COALESCE(date_of_birth, ''), COALESCE(home_address, ''), COALESCE(phone_number, ''),
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password_hash, role_id, revoked_permissions, date_of_birth, home_address, phone_number)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.RoleID,
		domain.PermissionStrings(user.RevokedPermissions),
		user.DateOfBirth,
		user.HomeAddress,
		user.PhoneNumber,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, password_hash=$2, role_id=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		user.PasswordHash,
		user.RoleID,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
}

func (r *userRepository) ListByRole(ctx context.Context, roleID string) ([]*domain.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role_id=$1 ORDER BY username`, roleID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
}

func (r *userRepository) UpdateRole(ctx context.Context, userID, roleID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET role_id=$1, updated_at=NOW() WHERE id=$2`, roleID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Revocation toggles are single-statement membership-guarded array updates so
// concurrent revoke/restore calls for the same user never lose updates.
func (r *userRepository) AddRevokedPermission(ctx context.Context, userID string, permission domain.Permission) (bool, error) {
	const query = `
        UPDATE users SET revoked_permissions = array_append(revoked_permissions, $2), updated_at=NOW()
        WHERE id=$1 AND NOT ($2 = ANY(revoked_permissions))`

	cmd, err := r.pool.Exec(ctx, query, userID, string(permission))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) RemoveRevokedPermission(ctx context.Context, userID string, permission domain.Permission) (bool, error) {
	const query = `
        UPDATE users SET revoked_permissions = array_remove(revoked_permissions, $2), updated_at=NOW()
        WHERE id=$1 AND $2 = ANY(revoked_permissions)`

	cmd, err := r.pool.Exec(ctx, query, userID, string(permission))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var revoked []string
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.RoleID,
		&revoked,
		&user.DateOfBirth,
		&user.HomeAddress,
		&user.PhoneNumber,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.RevokedPermissions = domain.PermissionsFromStrings(revoked)
	return &user, nil
}
