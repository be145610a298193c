package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

const (
	cacheKeyRoles       = "roles:all"
	cacheKeyPermissions = "permissions:all"
)

type roleStore interface {
	List(ctx context.Context) ([]models.Role, error)
	FindByID(ctx context.Context, id string) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	GetOrCreate(ctx context.Context, name string) (*models.Role, error)
	AddPermission(ctx context.Context, roleID, permissionID string) error
}

type permissionStore interface {
	List(ctx context.Context) ([]models.Permission, error)
	FindByCode(ctx context.Context, code string) (*models.Permission, error)
	IsActive(ctx context.Context, code string) (bool, error)
	Upsert(ctx context.Context, perm *models.Permission) error
	SetActive(ctx context.Context, code string, active bool) error
}

// DefaultPermissions are created by the seed command.
var DefaultPermissions = []models.Permission{
	{Code: models.PermApproveCompany, Description: "Approve company registrations"},
	{Code: models.PermViewAllInternships, Description: "Read diaries and evaluations of any internship"},
	{Code: models.PermCreateEvaluation, Description: "Create and update internship evaluations"},
	{Code: models.PermApproveEvaluation, Description: "Approve internship evaluations"},
}

// DefaultGrants maps each seeded role to its permission codes.
var DefaultGrants = map[string][]string{
	models.RoleAdmin: {
		models.PermApproveCompany,
		models.PermViewAllInternships,
		models.PermCreateEvaluation,
		models.PermApproveEvaluation,
	},
	models.RoleCompany: {models.PermCreateEvaluation},
	models.RoleStudent: {},
}

// RoleService manages roles and their permission sets.
type RoleService struct {
	roles       roleStore
	permissions permissionStore
	cache       *CacheService
	audit       auditLogger
	logger      *zap.Logger
}

// NewRoleService constructs a RoleService. cache may be nil.
func NewRoleService(roles roleStore, permissions permissionStore, cache *CacheService, audit auditLogger, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{roles: roles, permissions: permissions, cache: cache, audit: audit, logger: logger}
}

// ListRoles returns every role with its permissions.
func (s *RoleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	var cached []models.Role
	if hit, _ := s.cache.Get(ctx, cacheKeyRoles, &cached); hit {
		return cached, nil
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list roles")
	}
	_ = s.cache.Set(ctx, cacheKeyRoles, roles, 0)
	return roles, nil
}

// ListPermissions returns every permission, active or not.
func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var cached []models.Permission
	if hit, _ := s.cache.Get(ctx, cacheKeyPermissions, &cached); hit {
		return cached, nil
	}
	perms, err := s.permissions.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list permissions")
	}
	_ = s.cache.Set(ctx, cacheKeyPermissions, perms, 0)
	return perms, nil
}

// HasPermission loads the role fresh and checks code against its active permissions.
// An unknown role grants nothing.
func (s *RoleService) HasPermission(ctx context.Context, roleID, code string) (bool, error) {
	role, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return role.HasPermission(code), nil
}

// IsPermissionActive reports whether code exists and is active.
func (s *RoleService) IsPermissionActive(ctx context.Context, code string) (bool, error) {
	active, err := s.permissions.IsActive(ctx, code)
	if err != nil {
		return false, appErrors.Internal(err, "failed to read permission")
	}
	return active, nil
}

// EnsureRole returns the named role, creating it when missing.
func (s *RoleService) EnsureRole(ctx context.Context, name string) (*models.Role, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role name is required")
	}
	role, err := s.roles.GetOrCreate(ctx, name)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to ensure role")
	}
	s.invalidate(ctx)
	return role, nil
}

// CreatePermission inserts or refreshes a permission definition.
func (s *RoleService) CreatePermission(ctx context.Context, code, description string) (*models.Permission, error) {
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "permission code is required")
	}
	perm := &models.Permission{Code: code, Description: description}
	if err := s.permissions.Upsert(ctx, perm); err != nil {
		return nil, appErrors.Internal(err, "failed to save permission")
	}
	s.invalidate(ctx)
	return perm, nil
}

// Grant adds the permission code to the named role. Granting twice is a no-op.
func (s *RoleService) Grant(ctx context.Context, roleName, code string) error {
	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return appErrors.Internal(err, "failed to load role")
	}
	perm, err := s.permissions.FindByCode(ctx, code)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "permission not found")
		}
		return appErrors.Internal(err, "failed to load permission")
	}
	if err := s.roles.AddPermission(ctx, role.ID, perm.ID); err != nil {
		return appErrors.Internal(err, "failed to grant permission")
	}
	s.invalidate(ctx)
	return nil
}

// SetPermissionActive toggles a permission for every role that holds it.
func (s *RoleService) SetPermissionActive(ctx context.Context, actor *models.Caller, code string, active bool) error {
	if err := s.permissions.SetActive(ctx, code, active); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "permission not found")
		}
		return appErrors.Internal(err, "failed to update permission")
	}
	s.invalidate(ctx)
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionPermissionToggle, "permission", code, map[string]bool{"active": active})
	s.logger.Info("permission toggled", zap.String("code", code), zap.Bool("active", active))
	return nil
}

// Seed creates the default permissions and roles and grants them.
func (s *RoleService) Seed(ctx context.Context) error {
	for _, perm := range DefaultPermissions {
		if _, err := s.CreatePermission(ctx, perm.Code, perm.Description); err != nil {
			return err
		}
	}
	for _, name := range []string{models.RoleAdmin, models.RoleStudent, models.RoleCompany} {
		if _, err := s.EnsureRole(ctx, name); err != nil {
			return err
		}
		for _, code := range DefaultGrants[name] {
			if err := s.Grant(ctx, name, code); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *RoleService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, cacheKeyRoles, cacheKeyPermissions)
}
