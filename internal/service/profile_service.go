package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type profileRepository interface {
	FindStudentByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
	FindCompanyByUserID(ctx context.Context, userID string) (*models.CompanyProfile, error)
	FindCompanyByID(ctx context.Context, id string) (*models.CompanyProfile, error)
	CreateStudent(ctx context.Context, profile *models.StudentProfile) error
	CreateCompany(ctx context.Context, profile *models.CompanyProfile) error
	UpdateStudent(ctx context.Context, profile *models.StudentProfile) error
	ApproveCompany(ctx context.Context, id string, approvedAt time.Time) error
}

// ProfileService serves student and company profiles.
type ProfileService struct {
	repo      profileRepository
	access    *AccessService
	audit     auditLogger
	events    eventPublisher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs a ProfileService. events may be nil.
func NewProfileService(repo profileRepository, access *AccessService, audit auditLogger, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &ProfileService{repo: repo, access: access, audit: audit, events: events, validator: validate, logger: logger, now: time.Now}
}

// GetStudentProfile returns the caller's student profile.
func (s *ProfileService) GetStudentProfile(ctx context.Context, caller *models.Caller) (*models.StudentProfile, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.FindStudentByUserID(ctx, user.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load student profile")
	}
	return profile, nil
}

// GetCompanyProfile returns the caller's company profile.
func (s *ProfileService) GetCompanyProfile(ctx context.Context, caller *models.Caller) (*models.CompanyProfile, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.FindCompanyByUserID(ctx, user.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company profile not found")
		}
		return nil, appErrors.Internal(err, "failed to load company profile")
	}
	return profile, nil
}

// UpdateStudentProfile overwrites names and, when provided, phone and address.
func (s *ProfileService) UpdateStudentProfile(ctx context.Context, caller *models.Caller, req dto.UpdateStudentProfileRequest) (*models.StudentProfile, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student profile payload")
	}

	profile, err := s.repo.FindStudentByUserID(ctx, user.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotOwner, "only students can update a student profile")
		}
		return nil, appErrors.Internal(err, "failed to load student profile")
	}

	profile.FirstName = req.FirstName
	profile.LastName = req.LastName
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.Address != "" {
		profile.Address = req.Address
	}
	if err := s.repo.UpdateStudent(ctx, profile); err != nil {
		return nil, appErrors.Internal(err, "failed to update student profile")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionProfileUpdate, "student_profile", profile.ID, req)
	return profile, nil
}

// ApproveCompany marks a company profile approved. Requires approve_company.
func (s *ProfileService) ApproveCompany(ctx context.Context, caller *models.Caller, req dto.ApproveCompanyRequest) (*dto.ApproveCompanyResult, error) {
	if err := s.access.Require(ctx, caller, models.PermApproveCompany); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid approve company payload")
	}
	if !validID(req.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
	}

	company, err := s.repo.FindCompanyByID(ctx, req.CompanyID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Internal(err, "failed to load company")
	}
	if company.IsApproved {
		return &dto.ApproveCompanyResult{Success: true, Message: "company already approved"}, nil
	}

	approvedAt := s.now().UTC()
	if err := s.repo.ApproveCompany(ctx, company.ID, approvedAt); err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Internal(err, "failed to approve company")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionCompanyApprove, "company_profile", company.ID, map[string]interface{}{"approved_at": approvedAt})
	s.events.Publish(ctx, models.EventCompanyApproved, company.ID, caller.UserID, map[string]string{
		"company_id": company.ID,
		"user_id":    company.UserID,
	})
	return &dto.ApproveCompanyResult{Success: true, Message: "company approved"}, nil
}

// CreateStudentProfile stores a profile for an existing student user.
func (s *ProfileService) CreateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	if profile.UserID == "" || profile.FirstName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user and first name are required")
	}
	if err := s.repo.CreateStudent(ctx, profile); err != nil {
		return appErrors.Internal(err, "failed to create student profile")
	}
	return nil
}

// CreateCompanyProfile stores a profile for an existing company user.
func (s *ProfileService) CreateCompanyProfile(ctx context.Context, profile *models.CompanyProfile) error {
	if profile.UserID == "" || profile.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user and company name are required")
	}
	if err := s.repo.CreateCompany(ctx, profile); err != nil {
		return appErrors.Internal(err, "failed to create company profile")
	}
	return nil
}
