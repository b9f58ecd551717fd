package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talentreview/internal/domain/auth"
	"talentreview/internal/domain/competencies"
	"talentreview/internal/platform/config"
)

// Seed makes sure the default tenant has roles, permissions, an HR admin and
// the built-in competency catalog. It is safe to run on every start.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var tenantID string
	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		id, err := ensureTenant(ctx, tx, cfg.SeedTenantName)
		if err != nil {
			return err
		}
		tenantID = id
		if err := grantRoles(ctx, tx, tenantID); err != nil {
			return err
		}
		return ensureAdmin(ctx, tx, tenantID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	})
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}
	return competencies.NewService(competencies.NewStore(pool)).SeedDefaults(ctx, tenantID)
}

func ensureTenant(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	}
	return id, err
}

// grantRoles upserts the permission keys and every role of the tenant, then
// links each role to its permissions. Grants are only ever added.
func grantRoles(ctx context.Context, tx pgx.Tx, tenantID string) error {
	batch := &pgx.Batch{}
	for _, perm := range auth.DefaultPermissions {
		batch.Queue("INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
	}
	for role, perms := range auth.RolePermissions {
		batch.Queue("INSERT INTO roles (tenant_id, name) VALUES ($1, $2) ON CONFLICT (tenant_id, name) DO NOTHING", tenantID, role)
		batch.Queue(`
      INSERT INTO role_permissions (role_id, permission_id)
      SELECT r.id, p.id
      FROM roles r
      JOIN permissions p ON p.key = ANY($3)
      WHERE r.tenant_id = $1 AND r.name = $2
      ON CONFLICT DO NOTHING
    `, tenantID, role, perms)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// ensureAdmin creates the HR admin and the employee record that lets the
// admin take part in evaluations.
func ensureAdmin(ctx context.Context, tx pgx.Tx, tenantID, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND email = $2)", tenantID, email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	var userID string
	err = tx.QueryRow(ctx, `
    INSERT INTO users (tenant_id, email, password_hash, role_id)
    SELECT $1, $2, $3, id FROM roles WHERE tenant_id = $1 AND name = $4
    RETURNING id
  `, tenantID, email, hash, auth.RoleHR).Scan(&userID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "INSERT INTO employees (tenant_id, user_id, full_name, email) VALUES ($1, $2, $3, $4)", tenantID, userID, "Administrator", email); err != nil {
		return err
	}
	slog.Info("seeded hr admin", "tenantId", tenantID, "email", email)
	return nil
}
