package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/jobs"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/pkg/logger"
	"gorm.io/datatypes"
)

// Actor identifies who triggered a change, for the audit trail
type Actor struct {
	UserID    *uuid.UUID
	IP        string
	UserAgent string
}

// SystemActor is used for changes made by background jobs
var SystemActor = Actor{UserAgent: "system"}

type AuditService struct {
	repo   repository.AuditRepository
	worker *jobs.Worker
}

func NewAuditService(repo repository.AuditRepository, worker *jobs.Worker) *AuditService {
	return &AuditService{repo: repo, worker: worker}
}

// Log records an audit entry synchronously
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uuid.UUID, details any) error {
	if s == nil || s.repo == nil {
		return nil
	}

	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = datatypes.JSON(raw)
	}
	return s.repo.Create(ctx, entry)
}

// LogAsync records an audit entry on the background worker. Failures are
// logged, never returned: the audited change has already committed.
func (s *AuditService) LogAsync(actor Actor, action, entity string, entityID uuid.UUID, details any) {
	if s == nil || s.repo == nil {
		return
	}

	job := func(ctx context.Context) error {
		// Shutdown cancels the worker context before draining
		return s.Log(context.WithoutCancel(ctx), actor, action, entity, entityID, details)
	}
	if s.worker != nil && s.worker.EnqueueAsync("audit:"+action, job) {
		return
	}
	if err := job(context.Background()); err != nil {
		logger.Error("audit write failed", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	logs, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, translateError("list audits", err)
	}
	return logs, total, nil
}
