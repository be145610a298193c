package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit writes an audit entry for caller. Failures are logged and swallowed.
func recordAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, caller *models.Caller, action, resource, resourceID string, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   action,
		Resource: resource,
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if caller != nil {
		userID := caller.UserID
		entry.UserID = &userID
		entry.IPAddress = caller.IP
		entry.UserAgent = caller.Agent
	}
	if newValues != nil {
		if payload, err := json.Marshal(newValues); err == nil {
			entry.NewValues = payload
		}
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// validID reports whether id can address a stored row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
