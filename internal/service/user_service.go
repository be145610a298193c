package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/pkg/database"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type roleReader interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
}

type roleEnsurer interface {
	EnsureRole(ctx context.Context, name string) (*models.Role, error)
}

// UserService handles user creation and the current-user lookup.
type UserService struct {
	repo      userRepository
	roles     roleReader
	ensurer   roleEnsurer
	access    *AccessService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, roles roleReader, ensurer roleEnsurer, access *AccessService, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, roles: roles, ensurer: ensurer, access: access, validator: validate, logger: logger}
}

// CreateUser validates and stores a new user with a bcrypt password hash.
func (s *UserService) CreateUser(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	if err := s.validator.Var(email, "email"); err != nil {
		return nil, appErrors.Validation(err, "email is invalid")
	}
	if params.RoleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role is required")
	}
	if params.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password is required")
	}

	role, err := s.roles.FindByID(ctx, params.RoleID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "role does not exist")
		}
		return nil, appErrors.Internal(err, "failed to load role")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
		RoleID:       role.ID,
		IsActive:     params.IsActive,
		IsStaff:      params.IsStaff,
		IsSuperuser:  params.IsSuperuser,
		Status:       params.Status,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		return nil, appErrors.Internal(err, "failed to create user")
	}
	user.Role = role

	recordAudit(ctx, s.repo, s.logger, nil, models.AuditActionUserCreate, "user", user.ID, map[string]interface{}{
		"email":        user.Email,
		"role":         role.Name,
		"is_superuser": user.IsSuperuser,
	})
	return user, nil
}

// CreateSuperuser creates an active staff superuser holding the Admin role.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	role, err := s.ensurer.EnsureRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, models.CreateUserParams{
		Email:       email,
		Password:    password,
		RoleID:      role.ID,
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
		Status:      true,
	})
}

// CurrentUser returns the caller's user with its role loaded.
func (s *UserService) CurrentUser(ctx context.Context, caller *models.Caller) (*models.User, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil && !isNoRows(err) {
		return nil, appErrors.Internal(err, "failed to load role")
	}
	user.Role = role
	return user, nil
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
