package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/internal/service"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
	"github.com/noah-isme/internship-api/pkg/response"
)

type authOperations interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenPair, error)
	VerifyToken(token string) (*models.VerifyTokenResult, error)
}

type userOperations interface {
	CurrentUser(ctx context.Context, caller *models.Caller) (*models.User, error)
}

type roleOperations interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
}

type profileOperations interface {
	GetStudentProfile(ctx context.Context, caller *models.Caller) (*models.StudentProfile, error)
	GetCompanyProfile(ctx context.Context, caller *models.Caller) (*models.CompanyProfile, error)
	UpdateStudentProfile(ctx context.Context, caller *models.Caller, req dto.UpdateStudentProfileRequest) (*models.StudentProfile, error)
	ApproveCompany(ctx context.Context, caller *models.Caller, req dto.ApproveCompanyRequest) (*dto.ApproveCompanyResult, error)
}

type internshipOperations interface {
	CreateInternship(ctx context.Context, caller *models.Caller, req dto.CreateInternshipRequest) (*models.Internship, error)
	ListMyInternships(ctx context.Context, caller *models.Caller) ([]models.Internship, error)
	CreateDiaryEntry(ctx context.Context, caller *models.Caller, req dto.CreateDiaryRequest) (*models.DiaryEntry, error)
	ListDiaries(ctx context.Context, caller *models.Caller, internshipID string) ([]models.DiaryEntry, error)
	ListEvaluations(ctx context.Context, caller *models.Caller, internshipID string) ([]models.Evaluation, error)
}

type evaluationOperations interface {
	CreateEvaluation(ctx context.Context, caller *models.Caller, req dto.CreateEvaluationRequest) (*models.Evaluation, error)
	UpdateEvaluation(ctx context.Context, caller *models.Caller, req dto.UpdateEvaluationRequest) (*models.Evaluation, error)
	ApproveEvaluation(ctx context.Context, caller *models.Caller, req dto.EvaluationRef) (*models.Evaluation, error)
}

type exportOperations interface {
	ExportDiary(ctx context.Context, caller *models.Caller, req dto.ExportDiaryRequest) (*models.ExportResult, error)
}

// OperationServices groups the services reachable through the query endpoint.
type OperationServices struct {
	Auth        authOperations
	Users       userOperations
	Roles       roleOperations
	Profiles    profileOperations
	Internships internshipOperations
	Evaluations evaluationOperations
	Exports     exportOperations
}

type operationCall struct {
	caller *models.Caller
	vars   json.RawMessage
	ip     string
	agent  string
}

type operationFunc func(ctx context.Context, call operationCall) (interface{}, error)

// OperationHandler dispatches named operations posted to the query endpoint.
type OperationHandler struct {
	operations map[string]operationFunc
	metrics    *service.MetricsService
	logger     *zap.Logger
}

// NewOperationHandler builds the dispatch table.
func NewOperationHandler(svcs OperationServices, metrics *service.MetricsService, logger *zap.Logger) *OperationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &OperationHandler{metrics: metrics, logger: logger}
	h.operations = map[string]operationFunc{
		// queries
		"me": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Users.CurrentUser(ctx, call.caller)
		},
		"myStudentProfile": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Profiles.GetStudentProfile(ctx, call.caller)
		},
		"myCompanyProfile": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Profiles.GetCompanyProfile(ctx, call.caller)
		},
		"allRoles": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Roles.ListRoles(ctx)
		},
		"allPermissions": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Roles.ListPermissions(ctx)
		},
		"myInternships": func(ctx context.Context, call operationCall) (interface{}, error) {
			return svcs.Internships.ListMyInternships(ctx, call.caller)
		},
		"internshipDiaries": func(ctx context.Context, call operationCall) (interface{}, error) {
			ref, err := bindVariables[dto.InternshipRef](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Internships.ListDiaries(ctx, call.caller, ref.InternshipID)
		},
		"internshipEvaluations": func(ctx context.Context, call operationCall) (interface{}, error) {
			ref, err := bindVariables[dto.InternshipRef](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Internships.ListEvaluations(ctx, call.caller, ref.InternshipID)
		},

		// mutations
		"updateStudentProfile": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.UpdateStudentProfileRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Profiles.UpdateStudentProfile(ctx, call.caller, req)
		},
		"approveCompany": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.ApproveCompanyRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Profiles.ApproveCompany(ctx, call.caller, req)
		},
		"createInternship": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.CreateInternshipRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Internships.CreateInternship(ctx, call.caller, req)
		},
		"createInternshipDiary": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.CreateDiaryRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Internships.CreateDiaryEntry(ctx, call.caller, req)
		},
		"createEvaluation": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.CreateEvaluationRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Evaluations.CreateEvaluation(ctx, call.caller, req)
		},
		"updateEvaluation": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.UpdateEvaluationRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Evaluations.UpdateEvaluation(ctx, call.caller, req)
		},
		"approveEvaluation": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.EvaluationRef](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Evaluations.ApproveEvaluation(ctx, call.caller, req)
		},
		"exportInternshipDiary": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.ExportDiaryRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Exports.ExportDiary(ctx, call.caller, req)
		},
		"tokenAuth": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.TokenAuthRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Auth.Login(ctx, models.LoginRequest{Email: req.Email, Password: req.Password, IP: call.ip, UserAgent: call.agent})
		},
		"verifyToken": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.TokenRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Auth.VerifyToken(req.Token)
		},
		"refreshToken": func(ctx context.Context, call operationCall) (interface{}, error) {
			req, err := bindVariables[dto.TokenRequest](call.vars)
			if err != nil {
				return nil, err
			}
			return svcs.Auth.RefreshToken(ctx, models.RefreshTokenRequest{RefreshToken: req.Token, IP: call.ip, UserAgent: call.agent})
		},
	}
	return h
}

// Operations lists the registered operation names.
func (h *OperationHandler) Operations() []string {
	names := make([]string, 0, len(h.operations))
	for name := range h.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query godoc
// @Summary Execute an operation
// @Description Runs one named query or mutation. The result is returned under data.<operation>.
// @Tags Operations
// @Accept json
// @Produce json
// @Param payload body dto.OperationRequest true "Operation name and variables"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /query [post]
func (h *OperationHandler) Query(c *gin.Context) {
	var req dto.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid operation payload"))
		return
	}

	op, ok := h.operations[req.Operation]
	if !ok {
		h.metrics.ObserveOperation("unknown", appErrors.ErrUnknownOperation.Code, 0)
		response.Error(c, appErrors.Clone(appErrors.ErrUnknownOperation, "unknown operation "+req.Operation))
		return
	}

	start := time.Now()
	result, err := op(c.Request.Context(), operationCall{
		caller: callerFromContext(c),
		vars:   req.Variables,
		ip:     c.ClientIP(),
		agent:  c.GetHeader("User-Agent"),
	})
	duration := time.Since(start)
	if err != nil {
		appErr := appErrors.FromError(err)
		h.metrics.ObserveOperation(req.Operation, appErr.Code, duration)
		if appErr.Status >= 500 {
			h.logger.Error("operation failed", zap.String("operation", req.Operation), zap.Error(err))
		}
		response.Error(c, appErr)
		return
	}

	h.metrics.ObserveOperation(req.Operation, "OK", duration)
	response.OK(c, map[string]interface{}{req.Operation: result}, map[string]interface{}{
		"operation":          req.Operation,
		"processing_time_ms": duration.Milliseconds(),
	})
}

// bindVariables decodes the operation variables into T. Missing variables decode to the zero value.
func bindVariables[T any](raw json.RawMessage) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(&out); err != nil && err != io.EOF {
		return out, appErrors.Validation(err, "invalid operation variables")
	}
	return out, nil
}
