package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/internship-api/internal/models"
)

const permissionColumns = `id, code, description, is_active, created_at, updated_at`

// PermissionRepository provides database access for permission flags.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// List returns every permission ordered by code.
func (r *PermissionRepository) List(ctx context.Context) ([]models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions ORDER BY code`
	var perms []models.Permission
	if err := r.db.SelectContext(ctx, &perms, query); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}

// FindByCode returns a permission by its code.
func (r *PermissionRepository) FindByCode(ctx context.Context, code string) (*models.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE code = $1 LIMIT 1`
	var perm models.Permission
	if err := r.db.GetContext(ctx, &perm, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find permission by code: %w", err)
	}
	return &perm, nil
}

// IsActive reports whether the permission exists and is switched on. Unknown codes are inactive.
func (r *PermissionRepository) IsActive(ctx context.Context, code string) (bool, error) {
	const query = `SELECT is_active FROM permissions WHERE code = $1 LIMIT 1`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check permission active: %w", err)
	}
	return active, nil
}

// Upsert inserts the permission or refreshes the description of an existing code.
// The active flag of an existing permission is left untouched.
func (r *PermissionRepository) Upsert(ctx context.Context, perm *models.Permission) error {
	if perm.ID == "" {
		perm.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	const query = `INSERT INTO permissions (id, code, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
RETURNING id, is_active, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, perm.ID, perm.Code, perm.Description, perm.Active, now)
	if err := row.Scan(&perm.ID, &perm.Active, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}
	return nil
}

// SetActive toggles a permission. Returns sql.ErrNoRows when the code is unknown.
func (r *PermissionRepository) SetActive(ctx context.Context, code string, active bool) error {
	const query = `UPDATE permissions SET is_active = $2, updated_at = $3 WHERE code = $1`
	res, err := r.db.ExecContext(ctx, query, code, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set permission active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set permission active: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
