package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type evaluationRepository interface {
	Create(ctx context.Context, eval *models.Evaluation) error
	Update(ctx context.Context, eval *models.Evaluation) error
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
	SetApproved(ctx context.Context, id string, approved bool) error
}

type internshipFinder interface {
	FindByID(ctx context.Context, id string) (*models.Internship, error)
}

// EvaluationService records and approves internship evaluations.
type EvaluationService struct {
	evaluations evaluationRepository
	internships internshipFinder
	access      *AccessService
	audit       auditLogger
	events      eventPublisher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEvaluationService constructs an EvaluationService. events may be nil.
func NewEvaluationService(evaluations evaluationRepository, internships internshipFinder, access *AccessService, audit auditLogger, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &EvaluationService{
		evaluations: evaluations,
		internships: internships,
		access:      access,
		audit:       audit,
		events:      events,
		validator:   validate,
		logger:      logger,
	}
}

// CreateEvaluation scores an internship. Requires create_evaluation.
func (s *EvaluationService) CreateEvaluation(ctx context.Context, caller *models.Caller, req dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	return Guard(s.access, models.PermCreateEvaluation, func(ctx context.Context, caller *models.Caller) (*models.Evaluation, error) {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Validation(err, "invalid evaluation payload")
		}
		internship, err := s.loadInternship(ctx, req.InternshipID)
		if err != nil {
			return nil, err
		}

		eval := &models.Evaluation{InternshipID: internship.ID, Comment: req.Comment}
		applyScores(eval, req.EvaluationScores)
		if err := s.evaluations.Create(ctx, eval); err != nil {
			return nil, appErrors.Internal(err, "failed to create evaluation")
		}

		recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionEvaluationCreate, "evaluation", eval.ID, eval)
		s.events.Publish(ctx, models.EventEvaluationSaved, internship.ID, caller.UserID, eval)
		return eval, nil
	})(ctx, caller)
}

// UpdateEvaluation rewrites scores and comment. Requires create_evaluation.
func (s *EvaluationService) UpdateEvaluation(ctx context.Context, caller *models.Caller, req dto.UpdateEvaluationRequest) (*models.Evaluation, error) {
	return Guard(s.access, models.PermCreateEvaluation, func(ctx context.Context, caller *models.Caller) (*models.Evaluation, error) {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Validation(err, "invalid evaluation payload")
		}
		eval, err := s.load(ctx, req.EvaluationID)
		if err != nil {
			return nil, err
		}

		eval.Comment = req.Comment
		applyScores(eval, req.EvaluationScores)
		if err := s.evaluations.Update(ctx, eval); err != nil {
			if isNoRows(err) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
			}
			return nil, appErrors.Internal(err, "failed to update evaluation")
		}

		recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionEvaluationUpdate, "evaluation", eval.ID, eval)
		s.events.Publish(ctx, models.EventEvaluationSaved, eval.InternshipID, caller.UserID, eval)
		return eval, nil
	})(ctx, caller)
}

// ApproveEvaluation marks an evaluation approved. Requires approve_evaluation.
func (s *EvaluationService) ApproveEvaluation(ctx context.Context, caller *models.Caller, req dto.EvaluationRef) (*models.Evaluation, error) {
	return Guard(s.access, models.PermApproveEvaluation, func(ctx context.Context, caller *models.Caller) (*models.Evaluation, error) {
		if err := s.validator.Struct(req); err != nil {
			return nil, appErrors.Validation(err, "invalid evaluation payload")
		}
		eval, err := s.load(ctx, req.EvaluationID)
		if err != nil {
			return nil, err
		}
		if err := s.evaluations.SetApproved(ctx, eval.ID, true); err != nil {
			if isNoRows(err) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
			}
			return nil, appErrors.Internal(err, "failed to approve evaluation")
		}
		eval.IsApproved = true

		recordAudit(ctx, s.audit, s.logger, caller, models.AuditActionEvaluationApprove, "evaluation", eval.ID, map[string]bool{"is_approved": true})
		s.events.Publish(ctx, models.EventEvaluationApproved, eval.InternshipID, caller.UserID, eval)
		return eval, nil
	})(ctx, caller)
}

func (s *EvaluationService) load(ctx context.Context, id string) (*models.Evaluation, error) {
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
	}
	eval, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Internal(err, "failed to load evaluation")
	}
	return eval, nil
}

func (s *EvaluationService) loadInternship(ctx context.Context, id string) (*models.Internship, error) {
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

func applyScores(eval *models.Evaluation, scores dto.EvaluationScores) {
	eval.Attendance = scores.Attendance
	eval.Performance = scores.Performance
	eval.Adaptation = scores.Adaptation
	eval.TechnicalSkills = scores.TechnicalSkills
	eval.CommunicationSkills = scores.CommunicationSkills
	eval.Teamwork = scores.Teamwork
	eval.ComputeAverage()
}
