package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID         string
	TenantID   string
	RoleID     string
	RoleName   string
	EmployeeID string
	Password   string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.tenant_id, u.role_id, r.name, COALESCE(e.id::text, ''), u.password_hash
    FROM users u
    JOIN roles r ON u.role_id = r.id
    LEFT JOIN employees e ON e.user_id = u.id AND e.tenant_id = u.tenant_id
    WHERE lower(u.email) = lower($1) AND u.status = $2
  `, email, UserStatusActive).Scan(&out.ID, &out.TenantID, &out.RoleID, &out.RoleName, &out.EmployeeID, &out.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrInvalidCredentials
	}
	return out, err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

// HasPermission satisfies the RBAC middleware.
func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1
      FROM role_permissions rp
      JOIN permissions p ON p.id = rp.permission_id
      WHERE rp.role_id = $1 AND p.key = $2
    )
  `, roleID, permission).Scan(&exists)
	return exists, err
}
