package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-api/internal/models"
	appErrors "github.com/noah-isme/internship-api/pkg/errors"
)

func TestAccessServiceRequire(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	admin := w.addUser(t, models.RoleAdmin, "admin@example.com")
	student := w.addUser(t, models.RoleStudent, "student@example.com")

	requireCode(t, w.access.Require(ctx, nil, models.PermApproveCompany), appErrors.ErrUnauthorized)
	requireCode(t, w.access.Require(ctx, student, models.PermApproveCompany), appErrors.ErrForbidden)
	require.NoError(t, w.access.Require(ctx, admin, models.PermApproveCompany))
	requireCode(t, w.access.Require(ctx, admin, "no_such_permission"), appErrors.ErrForbidden)
}

func TestAccessServiceRejectsInactiveAndUnknownCallers(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	admin := w.addUser(t, models.RoleAdmin, "admin@example.com")
	w.users.users[admin.UserID].IsActive = false

	_, err := w.access.Authenticate(ctx, admin)
	requireCode(t, err, appErrors.ErrUnauthorized)

	_, err = w.access.Authenticate(ctx, &models.Caller{UserID: "ghost"})
	requireCode(t, err, appErrors.ErrUnauthorized)
}

func TestAccessServiceSeesPermissionToggleImmediately(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	admin := w.addUser(t, models.RoleAdmin, "admin@example.com")

	require.NoError(t, w.access.Require(ctx, admin, models.PermApproveCompany))

	require.NoError(t, w.roleSvc.SetPermissionActive(ctx, nil, models.PermApproveCompany, false))
	requireCode(t, w.access.Require(ctx, admin, models.PermApproveCompany), appErrors.ErrForbidden)

	require.NoError(t, w.roleSvc.SetPermissionActive(ctx, nil, models.PermApproveCompany, true))
	require.NoError(t, w.access.Require(ctx, admin, models.PermApproveCompany))
}

func TestAccessServiceUsesStoredRoleNotCallerClaim(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	student := w.addUser(t, models.RoleStudent, "student@example.com")
	adminRole, err := w.roles.FindByName(ctx, models.RoleAdmin)
	require.NoError(t, err)

	forged := *student
	forged.RoleID = adminRole.ID
	requireCode(t, w.access.Require(ctx, &forged, models.PermApproveCompany), appErrors.ErrForbidden)
}

func TestGuardSkipsOperationWhenDenied(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	student := w.addUser(t, models.RoleStudent, "student@example.com")
	admin := w.addUser(t, models.RoleAdmin, "admin@example.com")

	calls := 0
	op := Guard(w.access, models.PermApproveEvaluation, func(ctx context.Context, caller *models.Caller) (string, error) {
		calls++
		return caller.UserID, nil
	})

	_, err := op(ctx, student)
	requireCode(t, err, appErrors.ErrForbidden)
	_, err = op(ctx, nil)
	requireCode(t, err, appErrors.ErrUnauthorized)
	assert.Equal(t, 0, calls)

	got, err := op(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, got)
	assert.Equal(t, 1, calls)
}
