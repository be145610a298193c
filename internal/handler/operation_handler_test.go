package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/middleware"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

type operationStub struct {
	caller     *models.Caller
	login      models.LoginRequest
	refresh    models.RefreshTokenRequest
	diaryRef   string
	createReq  dto.CreateInternshipRequest
	evaluation dto.CreateEvaluationRequest
	exportReq  dto.ExportDiaryRequest
	err        error
}

func (s *operationStub) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	s.login = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (s *operationStub) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.TokenPair, error) {
	s.refresh = req
	return &models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}, s.err
}

func (s *operationStub) VerifyToken(token string) (*models.VerifyTokenResult, error) {
	return &models.VerifyTokenResult{Valid: token == "good"}, s.err
}

func (s *operationStub) CurrentUser(ctx context.Context, caller *models.Caller) (*models.User, error) {
	s.caller = caller
	if caller == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.User{ID: caller.UserID, Email: caller.Email}, nil
}

func (s *operationStub) ListRoles(ctx context.Context) ([]models.Role, error) {
	return []models.Role{{ID: "r1", Name: models.RoleStudent}}, nil
}

func (s *operationStub) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return []models.Permission{}, nil
}

func (s *operationStub) GetStudentProfile(ctx context.Context, caller *models.Caller) (*models.StudentProfile, error) {
	s.caller = caller
	return &models.StudentProfile{}, s.err
}

func (s *operationStub) GetCompanyProfile(ctx context.Context, caller *models.Caller) (*models.CompanyProfile, error) {
	s.caller = caller
	return &models.CompanyProfile{}, s.err
}

func (s *operationStub) UpdateStudentProfile(ctx context.Context, caller *models.Caller, req dto.UpdateStudentProfileRequest) (*models.StudentProfile, error) {
	s.caller = caller
	return &models.StudentProfile{}, s.err
}

func (s *operationStub) ApproveCompany(ctx context.Context, caller *models.Caller, req dto.ApproveCompanyRequest) (*dto.ApproveCompanyResult, error) {
	s.caller = caller
	return &dto.ApproveCompanyResult{Success: true, Message: "company approved"}, s.err
}

func (s *operationStub) CreateInternship(ctx context.Context, caller *models.Caller, req dto.CreateInternshipRequest) (*models.Internship, error) {
	s.caller = caller
	s.createReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Internship{ID: "i1", Topic: req.Topic}, nil
}

func (s *operationStub) ListMyInternships(ctx context.Context, caller *models.Caller) ([]models.Internship, error) {
	s.caller = caller
	return []models.Internship{}, s.err
}

func (s *operationStub) CreateDiaryEntry(ctx context.Context, caller *models.Caller, req dto.CreateDiaryRequest) (*models.DiaryEntry, error) {
	s.caller = caller
	return &models.DiaryEntry{}, s.err
}

func (s *operationStub) ListDiaries(ctx context.Context, caller *models.Caller, internshipID string) ([]models.DiaryEntry, error) {
	s.caller = caller
	s.diaryRef = internshipID
	return []models.DiaryEntry{}, s.err
}

func (s *operationStub) ListEvaluations(ctx context.Context, caller *models.Caller, internshipID string) ([]models.Evaluation, error) {
	s.caller = caller
	return []models.Evaluation{}, s.err
}

func (s *operationStub) CreateEvaluation(ctx context.Context, caller *models.Caller, req dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	s.caller = caller
	s.evaluation = req
	return &models.Evaluation{}, s.err
}

func (s *operationStub) UpdateEvaluation(ctx context.Context, caller *models.Caller, req dto.UpdateEvaluationRequest) (*models.Evaluation, error) {
	s.caller = caller
	return &models.Evaluation{}, s.err
}

func (s *operationStub) ApproveEvaluation(ctx context.Context, caller *models.Caller, req dto.EvaluationRef) (*models.Evaluation, error) {
	s.caller = caller
	return &models.Evaluation{}, s.err
}

func (s *operationStub) ExportDiary(ctx context.Context, caller *models.Caller, req dto.ExportDiaryRequest) (*models.ExportResult, error) {
	s.caller = caller
	s.exportReq = req
	return &models.ExportResult{ID: "e1", Format: models.ExportFormatPDF, URL: "/api/v1/export/tok", ExpiresAt: time.Now()}, s.err
}

func newOperationHandler(stub *operationStub) *OperationHandler {
	return NewOperationHandler(OperationServices{
		Auth:        stub,
		Users:       stub,
		Roles:       stub,
		Profiles:    stub,
		Internships: stub,
		Evaluations: stub,
		Exports:     stub,
	}, nil, nil)
}

func performOperation(t *testing.T, h *OperationHandler, body string, claims *models.JWTClaims) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}

	h.Query(c)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func TestOperationHandlerRegistersAllOperations(t *testing.T) {
	h := newOperationHandler(&operationStub{})
	assert.ElementsMatch(t, []string{
		"me", "myStudentProfile", "myCompanyProfile", "allRoles", "allPermissions",
		"myInternships", "internshipDiaries", "internshipEvaluations",
		"updateStudentProfile", "approveCompany", "createInternship", "createInternshipDiary",
		"tokenAuth", "verifyToken", "refreshToken",
		"createEvaluation", "updateEvaluation", "approveEvaluation", "exportInternshipDiary",
	}, h.Operations())
}

func TestOperationHandlerPassesCaller(t *testing.T) {
	stub := &operationStub{}
	h := newOperationHandler(stub)

	w, envelope := performOperation(t, h, `{"operation":"me"}`, &models.JWTClaims{UserID: "u1", RoleID: "r1", Email: "a@x.io"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.caller)
	assert.Equal(t, "u1", stub.caller.UserID)
	assert.Equal(t, "handler-test", stub.caller.Agent)

	var data map[string]models.User
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	assert.Equal(t, "a@x.io", data["me"].Email)
}

func TestOperationHandlerAnonymousCaller(t *testing.T) {
	stub := &operationStub{}
	h := newOperationHandler(stub)

	w, envelope := performOperation(t, h, `{"operation":"me"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, stub.caller)

	var errBody appErrors.Error
	require.NoError(t, json.Unmarshal(envelope["error"], &errBody))
	assert.Equal(t, "UNAUTHORIZED", errBody.Code)
}

func TestOperationHandlerUnknownOperation(t *testing.T) {
	h := newOperationHandler(&operationStub{})

	w, envelope := performOperation(t, h, `{"operation":"dropTables"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errBody appErrors.Error
	require.NoError(t, json.Unmarshal(envelope["error"], &errBody))
	assert.Equal(t, "UNKNOWN_OPERATION", errBody.Code)
}

func TestOperationHandlerInvalidPayload(t *testing.T) {
	h := newOperationHandler(&operationStub{})

	w, _ := performOperation(t, h, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performOperation(t, h, `{"operation":"createInternship","variables":"oops"}`, &models.JWTClaims{UserID: "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationHandlerBindsVariables(t *testing.T) {
	stub := &operationStub{}
	h := newOperationHandler(stub)
	claims := &models.JWTClaims{UserID: "u1"}

	w, _ := performOperation(t, h, `{"operation":"createInternship","variables":{"companyId":"c1","topic":"Go","startDate":"2024-01-01","endDate":"2024-01-31"}}`, claims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", stub.createReq.CompanyID)
	assert.Equal(t, "2024-01-31", stub.createReq.EndDate)

	w, _ = performOperation(t, h, `{"operation":"internshipDiaries","variables":{"internshipId":"i9"}}`, claims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "i9", stub.diaryRef)

	w, _ = performOperation(t, h, `{"operation":"createEvaluation","variables":{"internshipId":"i9","attendance":8,"teamwork":6}}`, claims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, stub.evaluation.Attendance)
	assert.Equal(t, 6, stub.evaluation.Teamwork)

	w, _ = performOperation(t, h, `{"operation":"exportInternshipDiary","variables":{"internshipId":"i9","format":"csv"}}`, claims)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", stub.exportReq.Format)
}

func TestOperationHandlerTokenOperations(t *testing.T) {
	stub := &operationStub{}
	h := newOperationHandler(stub)

	w, envelope := performOperation(t, h, `{"operation":"tokenAuth","variables":{"email":"a@x.io","password":"secret"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.io", stub.login.Email)
	assert.Equal(t, "handler-test", stub.login.UserAgent)

	var data map[string]models.TokenPair
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	assert.Equal(t, "access", data["tokenAuth"].AccessToken)

	w, _ = performOperation(t, h, `{"operation":"refreshToken","variables":{"token":"refresh"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refresh", stub.refresh.RefreshToken)

	_, envelope = performOperation(t, h, `{"operation":"verifyToken","variables":{"token":"good"}}`, nil)
	var verified map[string]models.VerifyTokenResult
	require.NoError(t, json.Unmarshal(envelope["data"], &verified))
	assert.True(t, verified["verifyToken"].Valid)
}

func TestOperationHandlerMapsServiceErrors(t *testing.T) {
	stub := &operationStub{err: appErrors.Clone(appErrors.ErrNotOwner, "you are not a participant of this internship")}
	h := newOperationHandler(stub)

	w, _ := performOperation(t, h, `{"operation":"internshipEvaluations","variables":{"internshipId":"i1"}}`, &models.JWTClaims{UserID: "u1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	stub.err = appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	w, _ = performOperation(t, h, `{"operation":"tokenAuth","variables":{"email":"a@x.io","password":"bad"}}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBindVariablesEmpty(t *testing.T) {
	ref, err := bindVariables[dto.InternshipRef](nil)
	require.NoError(t, err)
	assert.Empty(t, ref.InternshipID)

	ref, err = bindVariables[dto.InternshipRef](json.RawMessage(" null "))
	require.NoError(t, err)
	assert.Empty(t, ref.InternshipID)
}
