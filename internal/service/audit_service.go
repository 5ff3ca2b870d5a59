package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// AuditService appends to and reads the bounded audit trail. Appends are
// best-effort: a failed write never rolls back the action it describes,
// but is logged and counted so operators can see it.
type AuditService struct {
	entries *repository.Collection[domain.AuditEntry]
	slot    session.Slot
	logger  *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(repos *repository.Repositories, slot session.Slot, logger *zap.Logger) *AuditService {
	return &AuditService{entries: repos.AuditLogs, slot: slot, logger: logger}
}

// Record appends an entry attributed to the current session user, or
// "system" when no session is established.
func (s *AuditService) Record(ctx context.Context, action, description string) {
	actor, err := s.slot.Current(ctx)
	if err != nil {
		s.logger.Warn("audit actor lookup failed", zap.Error(err))
	}
	s.RecordFor(ctx, actor, action, description)
}

// RecordFor appends an entry attributed to the given actor.
func (s *AuditService) RecordFor(ctx context.Context, actor *domain.User, action, description string) {
	entry := domain.AuditEntry{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		UserID:      domain.SystemActor,
		Username:    domain.SystemActor,
		UserRole:    domain.SystemActor,
		Action:      action,
		Description: description,
	}
	if actor != nil {
		entry.UserID = actor.ID
		entry.Username = actor.Username
		entry.UserRole = string(actor.Role)
	}

	_, err := s.entries.Mutate(ctx, func(entries []domain.AuditEntry) ([]domain.AuditEntry, error) {
		entries = append(entries, entry)
		if excess := len(entries) - domain.AuditRetentionLimit; excess > 0 {
			entries = entries[excess:]
		}
		return entries, nil
	})
	if err != nil {
		observability.RecordAuditWriteFailure()
		s.logger.Error("audit write failed",
			zap.String("action", action),
			zap.String("description", description),
			zap.Error(err))
	}
}

// Read returns up to limit entries, newest first. Owner only.
func (s *AuditService) Read(ctx context.Context, actor *domain.User, limit int) ([]domain.AuditEntry, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("audit log is owner-only")
	}

	entries, err := s.entries.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]domain.AuditEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
