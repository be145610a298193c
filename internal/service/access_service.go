package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type accessUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type permissionChecker interface {
	HasPermission(ctx context.Context, roleID, code string) (bool, error)
}

// Operation is a unit of work executed on behalf of a caller.
type Operation[T any] func(ctx context.Context, caller *models.Caller) (T, error)

// AccessService resolves callers to active users and checks role permissions.
type AccessService struct {
	users  accessUserReader
	roles  permissionChecker
	logger *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(users accessUserReader, roles permissionChecker, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{users: users, roles: roles, logger: logger}
}

// Authenticate returns the active user behind caller.
func (s *AccessService) Authenticate(ctx context.Context, caller *models.Caller) (*models.User, error) {
	if caller == nil || caller.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load caller")
	}
	if !user.IsActive {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive")
	}
	return user, nil
}

// Can reports whether the caller's current role grants code.
func (s *AccessService) Can(ctx context.Context, caller *models.Caller, code string) (bool, error) {
	user, err := s.Authenticate(ctx, caller)
	if err != nil {
		return false, err
	}
	ok, err := s.roles.HasPermission(ctx, user.RoleID, code)
	if err != nil {
		return false, appErrors.Internal(err, "failed to check permission")
	}
	return ok, nil
}

// Require fails with FORBIDDEN unless the caller's role grants code.
func (s *AccessService) Require(ctx context.Context, caller *models.Caller, code string) error {
	ok, err := s.Can(ctx, caller, code)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("permission denied", zap.String("user_id", caller.UserID), zap.String("permission", code))
		return appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to perform this action")
	}
	return nil
}

// Guard runs op only after Require succeeds for code.
func Guard[T any](access *AccessService, code string, op Operation[T]) Operation[T] {
	return func(ctx context.Context, caller *models.Caller) (T, error) {
		if err := access.Require(ctx, caller, code); err != nil {
			var zero T
			return zero, err
		}
		return op(ctx, caller)
	}
}
