package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// ClientService manages lead intake and validity.
type ClientService struct {
	repos *repository.Repositories
	audit *AuditService
}

// ClientDraft carries intake fields for a new lead.
type ClientDraft struct {
	FullName           string
	Email              string
	Phone              string
	Company            string
	Website            string
	ServicesNeeded     string
	ProjectDescription string
	CompanySummary     string
	Source             domain.ClientSource
	SourceID           string
}

// NewClientService builds the service.
func NewClientService(repos *repository.Repositories, audit *AuditService) *ClientService {
	return &ClientService{repos: repos, audit: audit}
}

// AddClient records a new lead from owner entry or external intake.
func (s *ClientService) AddClient(ctx context.Context, actor *domain.User, draft ClientDraft) (*domain.Client, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("lead intake is owner-only")
	}
	if draft.FullName == "" || draft.Email == "" {
		return nil, apperrors.NewValidationError("full name and email required", nil)
	}
	if draft.Source == "" {
		draft.Source = domain.ClientSourceManual
	}

	client := domain.Client{
		ID:                 uuid.NewString(),
		FullName:           draft.FullName,
		Email:              draft.Email,
		Phone:              draft.Phone,
		Company:            draft.Company,
		Website:            draft.Website,
		ServicesNeeded:     draft.ServicesNeeded,
		ProjectDescription: draft.ProjectDescription,
		CompanySummary:     draft.CompanySummary,
		Source:             draft.Source,
		SourceID:           draft.SourceID,
		Status:             domain.ClientStatusValid,
		Active:             true,
		SubmittedAt:        time.Now(),
	}
	if err := s.repos.Clients.Append(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionClientAdded,
		fmt.Sprintf("client %s (%s) added", client.FullName, client.Company))
	return &client, nil
}

// ListClients returns the full lead pool. Owner only.
func (s *ClientService) ListClients(ctx context.Context, actor *domain.User) ([]domain.Client, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("lead pool is owner-only")
	}
	clients, err := s.repos.Clients.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return clients, nil
}

// SetClientStatus records the validity verdict on a lead. A lead is
// immutable once its validity is set, apart from active toggles.
func (s *ClientService) SetClientStatus(ctx context.Context, actor *domain.User, clientID string, status domain.ClientStatus) error {
	if actor == nil || actor.Role != domain.RoleOwner {
		return apperrors.NewForbidden("lead triage is owner-only")
	}
	if status != domain.ClientStatusValid && status != domain.ClientStatusSpam {
		return apperrors.NewValidationError("unknown client status", map[string]any{"status": status})
	}

	_, err := s.repos.Clients.Mutate(ctx, func(clients []domain.Client) ([]domain.Client, error) {
		for i := range clients {
			if clients[i].ID == clientID {
				clients[i].Status = status
				return clients, nil
			}
		}
		return nil, apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionClientStatusSet,
		fmt.Sprintf("client %s marked %s", clientID, status))
	return nil
}

// SetClientActive toggles a lead's active flag.
func (s *ClientService) SetClientActive(ctx context.Context, actor *domain.User, clientID string, active bool) error {
	if actor == nil || actor.Role != domain.RoleOwner {
		return apperrors.NewForbidden("lead triage is owner-only")
	}

	_, err := s.repos.Clients.Mutate(ctx, func(clients []domain.Client) ([]domain.Client, error) {
		for i := range clients {
			if clients[i].ID == clientID {
				clients[i].Active = active
				return clients, nil
			}
		}
		return nil, apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
	})
	return apperrors.MapError(err)
}
