package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// DeveloperService manages the developer roster. A developer record and
// its paired developer-role user account are created together and stay
// username-consistent.
type DeveloperService struct {
	repos    *repository.Repositories
	identity *IdentityService
	audit    *AuditService
	logger   *zap.Logger
}

// DeveloperDraft describes a new roster entry.
type DeveloperDraft struct {
	Name           string
	Username       string
	Secret         string
	Specialization string
}

// NewDeveloperService builds the service.
func NewDeveloperService(repos *repository.Repositories, identity *IdentityService, audit *AuditService, logger *zap.Logger) *DeveloperService {
	return &DeveloperService{repos: repos, identity: identity, audit: audit, logger: logger}
}

// CreateDeveloper provisions the paired user account first, then the
// roster record. A failed roster write deactivates the fresh account so
// no half-created pair survives.
func (s *DeveloperService) CreateDeveloper(ctx context.Context, actor *domain.User, draft DeveloperDraft) (*domain.Developer, error) {
	if actor == nil || actor.Role != domain.RoleManager {
		return nil, apperrors.NewForbidden("only managers hire developers")
	}
	if draft.Name == "" || draft.Username == "" || draft.Secret == "" {
		return nil, apperrors.NewValidationError("name, username and secret required", nil)
	}

	user, err := s.identity.CreateUser(ctx, actor, UserDraft{
		Role:     domain.RoleDeveloper,
		Name:     draft.Name,
		Username: draft.Username,
		Secret:   draft.Secret,
		Active:   true,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	dev := domain.Developer{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Name:           draft.Name,
		Username:       draft.Username,
		Specialization: draft.Specialization,
		ManagerID:      actor.ID,
		ProjectIDs:     []string{},
		Active:         true,
		CreatedAt:      time.Now(),
	}
	if err := s.repos.Devs.Append(ctx, dev); err != nil {
		if derr := s.identity.DeactivateUser(ctx, actor, user.ID); derr != nil {
			s.logger.Error("roster compensation failed", zap.String("user_id", user.ID), zap.Error(derr))
		}
		return nil, apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionDeveloperCreated,
		fmt.Sprintf("developer %s (%s) added to roster", dev.Name, dev.Specialization))
	return &dev, nil
}

// ListDevelopers returns the owner's full roster or a manager's own.
func (s *DeveloperService) ListDevelopers(ctx context.Context, actor *domain.User) ([]domain.Developer, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	devs, err := s.repos.Devs.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	switch actor.Role {
	case domain.RoleOwner:
		return devs, nil
	case domain.RoleManager:
		out := make([]domain.Developer, 0, len(devs))
		for _, d := range devs {
			if d.ManagerID == actor.ID {
				out = append(out, d)
			}
		}
		return out, nil
	}
	return nil, apperrors.NewForbidden("roster is restricted to owner and managers")
}

// SetDeveloperActive toggles a developer and its paired account together.
func (s *DeveloperService) SetDeveloperActive(ctx context.Context, actor *domain.User, developerID string, active bool) error {
	dev, err := s.repos.DeveloperByID(ctx, developerID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !auth.CanManageDeveloper(actor, dev) {
		return apperrors.NewForbidden("developer belongs to another manager")
	}

	_, err = s.repos.Devs.Mutate(ctx, func(devs []domain.Developer) ([]domain.Developer, error) {
		for i := range devs {
			if devs[i].ID == developerID {
				devs[i].Active = active
				return devs, nil
			}
		}
		return nil, apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	_, err = s.repos.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == dev.UserID {
				users[i].Active = active
			}
		}
		return users, nil
	})
	return apperrors.MapError(err)
}
