package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/dto"
	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

func TestProfileServiceGetProfiles(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	student := w.addStudent(t, "s@example.com", "Ayse", "Yilmaz")
	company, _ := w.addCompany(t, "c@example.com", "Acme")

	profile, err := w.profileSvc.GetStudentProfile(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, "Ayse Yilmaz", profile.FullName())

	_, err = w.profileSvc.GetStudentProfile(ctx, company)
	requireCode(t, err, appErrors.ErrNotFound)

	cp, err := w.profileSvc.GetCompanyProfile(ctx, company)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cp.Name)

	_, err = w.profileSvc.GetCompanyProfile(ctx, student)
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = w.profileSvc.GetCompanyProfile(ctx, nil)
	requireCode(t, err, appErrors.ErrUnauthorized)
}

func TestProfileServiceUpdateStudentProfile(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	student := w.addStudent(t, "s@example.com", "Ayse", "Yilmaz")

	updated, err := w.profileSvc.UpdateStudentProfile(ctx, student, dto.UpdateStudentProfileRequest{FirstName: "Ayşe", LastName: "Kaya"})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", updated.FirstName)
	assert.Equal(t, "Kaya", updated.LastName)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Old Street 1", updated.Address)

	updated, err = w.profileSvc.UpdateStudentProfile(ctx, student, dto.UpdateStudentProfileRequest{FirstName: "Ayşe", LastName: "Kaya", Phone: "555-0199", Address: "New Street 2"})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Equal(t, "New Street 2", w.profiles.students[student.UserID].Address)

	_, err = w.profileSvc.UpdateStudentProfile(ctx, student, dto.UpdateStudentProfileRequest{LastName: "Kaya"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestProfileServiceUpdateRequiresStudentProfile(t *testing.T) {
	w := newWorld(t)
	company, _ := w.addCompany(t, "c@example.com", "Acme")

	_, err := w.profileSvc.UpdateStudentProfile(context.Background(), company, dto.UpdateStudentProfileRequest{FirstName: "A", LastName: "B"})
	requireCode(t, err, appErrors.ErrNotOwner)
}

func TestProfileServiceApproveCompany(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	admin := w.addUser(t, models.RoleAdmin, "admin@example.com")
	student := w.addStudent(t, "s@example.com", "Ayse", "Yilmaz")
	_, company := w.addCompany(t, "c@example.com", "Acme")
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	w.profileSvc.now = func() time.Time { return fixed }

	_, err := w.profileSvc.ApproveCompany(ctx, student, dto.ApproveCompanyRequest{CompanyID: company.ID})
	requireCode(t, err, appErrors.ErrForbidden)
	assert.False(t, w.profiles.companies[company.UserID].IsApproved)

	_, err = w.profileSvc.ApproveCompany(ctx, admin, dto.ApproveCompanyRequest{CompanyID: uuid.NewString()})
	requireCode(t, err, appErrors.ErrNotFound)
	_, err = w.profileSvc.ApproveCompany(ctx, admin, dto.ApproveCompanyRequest{CompanyID: "not-a-uuid"})
	requireCode(t, err, appErrors.ErrNotFound)

	result, err := w.profileSvc.ApproveCompany(ctx, admin, dto.ApproveCompanyRequest{CompanyID: company.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	stored := w.profiles.companies[company.UserID]
	assert.True(t, stored.IsApproved)
	require.NotNil(t, stored.ApprovedAt)
	assert.Equal(t, fixed, *stored.ApprovedAt)
	assert.Equal(t, []string{models.EventCompanyApproved}, w.events.types())
	assert.Contains(t, w.users.auditActions(), models.AuditActionCompanyApprove)

	result, err = w.profileSvc.ApproveCompany(ctx, admin, dto.ApproveCompanyRequest{CompanyID: company.ID})
	require.NoError(t, err)
	assert.Equal(t, "company already approved", result.Message)
	assert.Len(t, w.events.events, 1)
}
