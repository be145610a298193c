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

type internshipRepository interface {
	Create(ctx context.Context, in *models.Internship) error
	FindByID(ctx context.Context, id string) (*models.Internship, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.Internship, error)
}

type diaryRepository interface {
	Create(ctx context.Context, entry *models.DiaryEntry) error
	ListByInternship(ctx context.Context, internshipID string) ([]models.DiaryEntry, error)
}

type evaluationLister interface {
	ListByInternship(ctx context.Context, internshipID string) ([]models.Evaluation, error)
}

// InternshipService manages internships and their diaries.
type InternshipService struct {
	internships internshipRepository
	diaries     diaryRepository
	evaluations evaluationLister
	users       accessUserReader
	access      *AccessService
	audit       auditLogger
	events      eventPublisher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInternshipService constructs an InternshipService. events may be nil.
func NewInternshipService(
	internships internshipRepository,
	diaries diaryRepository,
	evaluations evaluationLister,
	users accessUserReader,
	access *AccessService,
	audit auditLogger,
	events eventPublisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *InternshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &InternshipService{
		internships: internships,
		diaries:     diaries,
		evaluations: evaluations,
		users:       users,
		access:      access,
		audit:       audit,
		events:      events,
		validator:   validate,
		logger:      logger,
	}
}

// CreateInternship registers a pending internship with the caller as student.
func (s *InternshipService) CreateInternship(ctx context.Context, caller *models.Caller, req dto.CreateInternshipRequest) (*models.Internship, error) {
	student, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid internship payload")
	}
	start, _ := time.Parse(dto.DateLayout, req.StartDate)
	end, _ := time.Parse(dto.DateLayout, req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}

	if !validID(req.CompanyID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
	}
	company, err := s.users.FindByID(ctx, req.CompanyID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Internal(err, "failed to load company")
	}

	internship := &models.Internship{
		StudentID:   student.ID,
		CompanyID:   company.ID,
		Topic:       req.Topic,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      models.InternshipPending,
		WorkingDays: WorkingDays(start, end),
	}
	if err := s.internships.Create(ctx, internship); err != nil {
		return nil, appErrors.Internal(err, "failed to create internship")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionInternshipCreate, "internship", internship.ID, internship)
	s.events.Publish(ctx, models.EventInternshipCreated, internship.ID, student.ID, internship)
	return internship, nil
}

// ListMyInternships returns internships where the caller is student or company, each once.
func (s *InternshipService) ListMyInternships(ctx context.Context, caller *models.Caller) ([]models.Internship, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	rows, err := s.internships.ListByParticipant(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list internships")
	}
	seen := make(map[string]struct{}, len(rows))
	result := make([]models.Internship, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}
		result = append(result, row)
	}
	return result, nil
}

// GetInternship returns an internship the caller may read.
func (s *InternshipService) GetInternship(ctx context.Context, caller *models.Caller, internshipID string) (*models.Internship, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	internship, err := s.load(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if internship.IsParticipant(user.ID) {
		return internship, nil
	}
	ok, err := s.access.Can(ctx, caller, models.PermViewAllInternships)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotOwner, "you are not a participant of this internship")
	}
	return internship, nil
}

// CreateDiaryEntry appends a draft diary entry. Only the internship's student may write.
func (s *InternshipService) CreateDiaryEntry(ctx context.Context, caller *models.Caller, req dto.CreateDiaryRequest) (*models.DiaryEntry, error) {
	user, err := s.access.Authenticate(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid diary payload")
	}
	internship, err := s.load(ctx, req.InternshipID)
	if err != nil {
		return nil, err
	}
	if internship.StudentID != user.ID {
		return nil, appErrors.Clone(appErrors.ErrNotOwner, "you can only write diaries for your own internship")
	}

	date, _ := time.Parse(dto.DateLayout, req.Date)
	entry := &models.DiaryEntry{
		InternshipID: internship.ID,
		DayNumber:    req.DayNumber,
		Content:      req.Content,
		Date:         date,
		Status:       models.DiaryDraft,
	}
	if err := s.diaries.Create(ctx, entry); err != nil {
		return nil, appErrors.Internal(err, "failed to create diary entry")
	}

	recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionDiaryCreate, "internship_diary", entry.ID, map[string]interface{}{
		"internship_id": internship.ID,
		"day_number":    entry.DayNumber,
	})
	s.events.Publish(ctx, models.EventDiaryCreated, internship.ID, user.ID, entry)
	return entry, nil
}

// ListDiaries returns the diary of an internship the caller may read.
func (s *InternshipService) ListDiaries(ctx context.Context, caller *models.Caller, internshipID string) ([]models.DiaryEntry, error) {
	internship, err := s.GetInternship(ctx, caller, internshipID)
	if err != nil {
		return nil, err
	}
	entries, err := s.diaries.ListByInternship(ctx, internship.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list diary entries")
	}
	return entries, nil
}

// ListEvaluations returns the evaluations of an internship the caller may read.
func (s *InternshipService) ListEvaluations(ctx context.Context, caller *models.Caller, internshipID string) ([]models.Evaluation, error) {
	internship, err := s.GetInternship(ctx, caller, internshipID)
	if err != nil {
		return nil, err
	}
	evals, err := s.evaluations.ListByInternship(ctx, internship.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list evaluations")
	}
	return evals, nil
}

func (s *InternshipService) load(ctx context.Context, id string) (*models.Internship, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
	}
	internship, err := s.internships.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Internal(err, "failed to load internship")
	}
	return internship, nil
}

// WorkingDays counts Monday to Friday days in [start, end].
func WorkingDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
