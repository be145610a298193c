package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/internship-api/internal/models"
)

const roleColumns = `id, name, created_at, updated_at`

// RoleRepository provides database access for roles and their permission sets.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new instance of RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

type rolePermissionRow struct {
	RoleID string `db:"role_id"`
	models.Permission
}

// List returns every role with its permissions loaded.
func (r *RoleRepository) List(ctx context.Context) ([]models.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY name`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	if len(roles) == 0 {
		return roles, nil
	}

	ids := make([]string, len(roles))
	for i := range roles {
		ids[i] = roles[i].ID
	}
	byRole, err := r.permissionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Permissions = byRole[roles[i].ID]
	}
	return roles, nil
}

// FindByID loads a role and its current permission set.
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*models.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1 LIMIT 1`, id)
}

// FindByName loads a role by its unique name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1 LIMIT 1`, name)
}

// GetOrCreate returns the role with the given name, creating it when absent.
func (r *RoleRepository) GetOrCreate(ctx context.Context, name string) (*models.Role, error) {
	now := time.Now().UTC()
	const insert = `INSERT INTO roles (id, name, created_at, updated_at) VALUES ($1, $2, $3, $3) ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), name, now); err != nil {
		return nil, fmt.Errorf("ensure role: %w", err)
	}
	return r.FindByName(ctx, name)
}

// AddPermission links a permission to a role. Existing links are ignored.
func (r *RoleRepository) AddPermission(ctx context.Context, roleID, permissionID string) error {
	const query = `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return fmt.Errorf("add role permission: %w", err)
	}
	return nil
}

func (r *RoleRepository) findOne(ctx context.Context, query string, arg string) (*models.Role, error) {
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	byRole, err := r.permissionsFor(ctx, []string{role.ID})
	if err != nil {
		return nil, err
	}
	role.Permissions = byRole[role.ID]
	return &role, nil
}

func (r *RoleRepository) permissionsFor(ctx context.Context, roleIDs []string) (map[string][]models.Permission, error) {
	const query = `SELECT rp.role_id, p.id, p.code, p.description, p.is_active, p.created_at, p.updated_at
FROM role_permissions rp
JOIN permissions p ON p.id = rp.permission_id
WHERE rp.role_id = ANY($1)
ORDER BY p.code`
	var rows []rolePermissionRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(roleIDs)); err != nil {
		return nil, fmt.Errorf("load role permissions: %w", err)
	}
	out := make(map[string][]models.Permission, len(roleIDs))
	for _, row := range rows {
		out[row.RoleID] = append(out[row.RoleID], row.Permission)
	}
	return out, nil
}
