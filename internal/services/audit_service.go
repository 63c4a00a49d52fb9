package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/repositories"
)

const auditWriteTimeout = 5 * time.Second

// auditService writes the audit trail for deletes and bulk runs.
type auditService struct {
	repo repositories.AuditRepositoryInterface
	log  *zap.SugaredLogger
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(repo repositories.AuditRepositoryInterface) AuditServicer {
	return &auditService{repo: repo, log: logger.Named("audit")}
}

// Log records an audit event. Failures are logged and swallowed; callers
// have already committed the change being audited.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      s.encodeChanges(action, changes),
	}

	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Errorw("failed to write audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource", resourceType+"/"+resourceID,
		)
	}
}

func (s *auditService) encodeChanges(action string, changes map[string]interface{}) string {
	if len(changes) == 0 {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		s.log.Warnw("audit changes are not serializable", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
