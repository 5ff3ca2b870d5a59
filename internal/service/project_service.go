package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// ProjectService is the project lifecycle engine: it owns project and
// phase state transitions, developer assignment, and activation.
type ProjectService struct {
	repos      *repository.Repositories
	identity   *IdentityService
	audit      *AuditService
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// mu makes multi-collection sequences (activation, assignment
	// mirroring) a single-writer critical section.
	mu sync.Mutex
}

// ProjectDependencies bundles requirements for the lifecycle engine.
type ProjectDependencies struct {
	Repos      *repository.Repositories
	Identity   *IdentityService
	Audit      *AuditService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// ActivationCredentials is the full client portal credential set required
// by activation. Secret arrives in plaintext and is stored only hashed.
type ActivationCredentials struct {
	Username string
	Secret   string
	Email    string
	Name     string
}

func (c ActivationCredentials) complete() bool {
	return c.Username != "" && c.Secret != "" && c.Email != "" && c.Name != ""
}

// NewProjectService builds the engine.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		repos:      deps.Repos,
		identity:   deps.Identity,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateProjectForClient seeds a pending project with exactly four phases.
// Phase ids are stable for the life of the project.
func (s *ProjectService) CreateProjectForClient(ctx context.Context, actor *domain.User, clientID string) (*domain.Project, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("project intake is owner-only")
	}
	if _, err := s.repos.ClientByID(ctx, clientID); err != nil {
		return nil, apperrors.MapError(err)
	}

	phases := make([]domain.Phase, 0, domain.PhaseCount)
	for i := 1; i <= domain.PhaseCount; i++ {
		phases = append(phases, domain.Phase{
			ID:                 uuid.NewString(),
			Name:               fmt.Sprintf("Phase %d", i),
			Status:             domain.PhaseStatusNotStarted,
			AssignedDevelopers: []string{},
		})
	}
	project := domain.Project{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Status:    domain.ProjectStatusPending,
		Phases:    phases,
		CreatedAt: time.Now(),
	}
	if err := s.repos.Projects.Append(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionProjectCreated,
		fmt.Sprintf("project %s created for client %s", project.ID, clientID))
	s.publish(ctx, actor, events.EventProjectCreated, project.ID, nil)
	return &project, nil
}

// ActivateProject flips a pending project to active as one logical unit:
// the client portal account is created (or reused) first, then the
// project mutation is persisted. If account creation fails the project is
// untouched; if the project write fails the fresh account is deactivated
// again. Either way no partial activation is observable.
func (s *ProjectService) ActivateProject(ctx context.Context, actor *domain.User, projectID, managerID string, earnings float64, creds ActivationCredentials) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.repos.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if project.Status != domain.ProjectStatusPending {
		return nil, apperrors.NewInvalidTransition("only pending projects can be activated",
			map[string]any{"project_id": projectID, "status": project.Status})
	}
	if !auth.CanManageProject(actor, project) {
		return nil, apperrors.NewForbidden("not allowed to activate this project")
	}
	if earnings < 0 {
		return nil, apperrors.NewActivationFailed("earnings must be non-negative", nil)
	}
	if !creds.complete() {
		return nil, apperrors.NewActivationFailed("full client credential set required", nil)
	}

	manager, err := s.repos.UserByID(ctx, managerID)
	if err != nil {
		return nil, apperrors.NewActivationFailed("manager not found", err)
	}
	if manager.Role != domain.RoleManager || !manager.Active {
		return nil, apperrors.NewActivationFailed("assignee is not an active manager", nil)
	}

	clientUser, created, err := s.ensureClientAccount(ctx, actor, projectID, creds)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.repos.Projects.Mutate(ctx, func(projects []domain.Project) ([]domain.Project, error) {
		for i := range projects {
			if projects[i].ID != projectID {
				continue
			}
			if projects[i].Status != domain.ProjectStatusPending {
				return nil, apperrors.NewInvalidTransition("project left pending state",
					map[string]any{"project_id": projectID})
			}
			projects[i].Status = domain.ProjectStatusActive
			projects[i].ManagerID = managerID
			projects[i].Earnings = &earnings
			projects[i].AssignedAt = &now
			projects[i].ClientUserID = clientUser.ID
			projects[i].ClientCredentials = &domain.ClientCredentials{
				Username:   creds.Username,
				SecretHash: clientUser.PasswordHash,
				Email:      creds.Email,
				Name:       creds.Name,
			}
			return projects, nil
		}
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
	})
	if err != nil {
		if created {
			s.compensateClientAccount(ctx, clientUser.ID)
		}
		return nil, apperrors.NewActivationFailed("project activation did not commit", err)
	}

	observability.RecordProjectTransition("pending_to_active")
	s.audit.RecordFor(ctx, actor, domain.AuditActionProjectActivated,
		fmt.Sprintf("project %s activated: manager %s, earnings %.2f", projectID, manager.Username, earnings))
	s.publish(ctx, actor, events.EventProjectActivated, projectID, events.ProjectActivatedPayload{
		ManagerID:     managerID,
		Earnings:      earnings,
		PortalAccount: creds.Username,
	})

	for i := range updated {
		if updated[i].ID == projectID {
			return &updated[i], nil
		}
	}
	return nil, apperrors.NewInternalError(fmt.Errorf("activated project %s missing after write", projectID))
}

// ensureClientAccount reuses an existing active client account with the
// portal username or creates a fresh one. Reuse additionally requires the
// supplied secret to verify, so activation cannot silently capture a
// foreign account.
func (s *ProjectService) ensureClientAccount(ctx context.Context, actor *domain.User, projectID string, creds ActivationCredentials) (*domain.User, bool, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	for i := range users {
		u := &users[i]
		if !u.Active || u.Username != creds.Username {
			continue
		}
		if u.Role != domain.RoleClient {
			return nil, false, apperrors.NewActivationFailed("portal username already taken",
				apperrors.NewDuplicateUsername(creds.Username))
		}
		if auth.CompareSecret(u.PasswordHash, creds.Secret) != nil {
			return nil, false, apperrors.NewActivationFailed("portal username already taken",
				apperrors.NewDuplicateUsername(creds.Username))
		}
		return u, false, nil
	}

	user, err := s.identity.CreateUser(ctx, actor, UserDraft{
		Role:      domain.RoleClient,
		Name:      creds.Name,
		Username:  creds.Username,
		Secret:    creds.Secret,
		Email:     creds.Email,
		ProjectID: projectID,
		Active:    true,
	})
	if err != nil {
		return nil, false, apperrors.NewActivationFailed("client account creation failed", err)
	}
	return user, true, nil
}

// compensateClientAccount deactivates an account created by an activation
// whose project write failed.
func (s *ProjectService) compensateClientAccount(ctx context.Context, userID string) {
	_, err := s.repos.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == userID {
				users[i].Active = false
			}
		}
		return users, nil
	})
	if err != nil {
		s.logger.Error("activation compensation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// DeliverProject marks an active project delivered. Phases freeze.
func (s *ProjectService) DeliverProject(ctx context.Context, actor *domain.User, projectID string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.repos.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !auth.CanManageProject(actor, project) {
		return nil, apperrors.NewForbidden("not allowed to deliver this project")
	}
	if project.Status != domain.ProjectStatusActive {
		return nil, apperrors.NewInvalidTransition("only active projects can be delivered",
			map[string]any{"project_id": projectID, "status": project.Status})
	}

	now := time.Now()
	_, err = s.repos.Projects.Mutate(ctx, func(projects []domain.Project) ([]domain.Project, error) {
		for i := range projects {
			if projects[i].ID == projectID {
				projects[i].Status = domain.ProjectStatusDelivered
				projects[i].DeliveredAt = &now
				return projects, nil
			}
		}
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	observability.RecordProjectTransition("active_to_delivered")
	s.audit.RecordFor(ctx, actor, domain.AuditActionProjectDelivered,
		fmt.Sprintf("project %s delivered", projectID))
	s.publish(ctx, actor, events.EventProjectDelivered, projectID,
		events.ProjectDeliveredPayload{DeliveredAt: now})

	project.Status = domain.ProjectStatusDelivered
	project.DeliveredAt = &now
	return project, nil
}

// AssignDeveloperToPhase adds a developer to a phase's assignment set.
// Idempotent: re-assigning is a no-op. The project id is mirrored into
// the developer record inside the same critical section.
func (s *ProjectService) AssignDeveloperToPhase(ctx context.Context, actor *domain.User, projectID, phaseID, developerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.repos.ProjectByID(ctx, projectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !auth.CanManageProject(actor, project) {
		return apperrors.NewForbidden("not allowed to staff this project")
	}
	if project.Status != domain.ProjectStatusActive {
		return apperrors.NewInvalidTransition("developers can only be assigned on active projects",
			map[string]any{"project_id": projectID, "status": project.Status})
	}

	dev, err := s.repos.DeveloperByID(ctx, developerID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if !dev.Active {
		return apperrors.NewConflict("developer inactive", map[string]any{"developer_id": developerID})
	}

	_, err = s.repos.Projects.Mutate(ctx, func(projects []domain.Project) ([]domain.Project, error) {
		for i := range projects {
			if projects[i].ID != projectID {
				continue
			}
			phase := projects[i].PhaseByID(phaseID)
			if phase == nil {
				return nil, apperrors.NewNotFound("phase", map[string]any{"phase_id": phaseID})
			}
			for _, id := range phase.AssignedDevelopers {
				if id == developerID {
					return projects, nil
				}
			}
			phase.AssignedDevelopers = append(phase.AssignedDevelopers, developerID)
			return projects, nil
		}
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	_, err = s.repos.Devs.Mutate(ctx, func(devs []domain.Developer) ([]domain.Developer, error) {
		for i := range devs {
			if devs[i].ID != developerID {
				continue
			}
			for _, id := range devs[i].ProjectIDs {
				if id == projectID {
					return devs, nil
				}
			}
			devs[i].ProjectIDs = append(devs[i].ProjectIDs, projectID)
			return devs, nil
		}
		return nil, apperrors.NewNotFound("developer", map[string]any{"developer_id": developerID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionDeveloperAssigned,
		fmt.Sprintf("developer %s assigned to phase %s of project %s", dev.Name, phaseID, projectID))
	s.publish(ctx, actor, events.EventDeveloperAssigned, projectID, events.DeveloperAssignedPayload{
		PhaseID:     phaseID,
		DeveloperID: developerID,
	})
	return nil
}

// AdvancePhaseStatus moves a phase forward. Transitions are monotonic;
// reverting a phase is not a supported operation of this engine.
func (s *ProjectService) AdvancePhaseStatus(ctx context.Context, actor *domain.User, projectID, phaseID string, newStatus domain.PhaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.repos.ProjectByID(ctx, projectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if project.Status != domain.ProjectStatusActive {
		return apperrors.NewInvalidTransition("phases only advance on active projects",
			map[string]any{"project_id": projectID, "status": project.Status})
	}
	if !s.canAdvancePhases(ctx, actor, project, phaseID) {
		return apperrors.NewForbidden("not allowed to advance phases on this project")
	}

	var oldStatus domain.PhaseStatus
	now := time.Now()
	_, err = s.repos.Projects.Mutate(ctx, func(projects []domain.Project) ([]domain.Project, error) {
		for i := range projects {
			if projects[i].ID != projectID {
				continue
			}
			phase := projects[i].PhaseByID(phaseID)
			if phase == nil {
				return nil, apperrors.NewNotFound("phase", map[string]any{"phase_id": phaseID})
			}
			if !phaseAdvanceAllowed(phase.Status, newStatus) {
				return nil, apperrors.NewInvalidTransition("phase status may only move forward",
					map[string]any{"from": phase.Status, "to": newStatus})
			}
			oldStatus = phase.Status
			phase.Status = newStatus
			switch newStatus {
			case domain.PhaseStatusInProgress:
				phase.StartDate = &now
			case domain.PhaseStatusCompleted:
				phase.EndDate = &now
			}
			return projects, nil
		}
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.audit.RecordFor(ctx, actor, domain.AuditActionPhaseAdvanced,
		fmt.Sprintf("phase %s of project %s moved %s -> %s", phaseID, projectID, oldStatus, newStatus))
	s.publish(ctx, actor, events.EventPhaseAdvanced, projectID, events.PhaseAdvancedPayload{
		PhaseID:   phaseID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
	return nil
}

func phaseAdvanceAllowed(from, to domain.PhaseStatus) bool {
	switch from {
	case domain.PhaseStatusNotStarted:
		return to == domain.PhaseStatusInProgress
	case domain.PhaseStatusInProgress:
		return to == domain.PhaseStatusCompleted
	}
	return false
}

// canAdvancePhases admits the project's manager, the owner, and
// developers assigned to the phase being advanced.
func (s *ProjectService) canAdvancePhases(ctx context.Context, actor *domain.User, project *domain.Project, phaseID string) bool {
	if auth.CanManageProject(actor, project) {
		return true
	}
	if actor == nil || actor.Role != domain.RoleDeveloper {
		return false
	}
	dev, err := s.developerForUser(ctx, actor.ID)
	if err != nil || dev == nil {
		return false
	}
	phase := project.PhaseByID(phaseID)
	if phase == nil {
		return false
	}
	for _, id := range phase.AssignedDevelopers {
		if id == dev.ID {
			return true
		}
	}
	return false
}

func (s *ProjectService) developerForUser(ctx context.Context, userID string) (*domain.Developer, error) {
	devs, err := s.repos.Devs.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		if devs[i].UserID == userID {
			return &devs[i], nil
		}
	}
	return nil, nil
}

// ListProjects returns all projects. Owner only; scoped reads go through
// the query views.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User) ([]domain.Project, error) {
	if actor == nil || actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("full project list is owner-only")
	}
	projects, err := s.repos.Projects.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

func (s *ProjectService) publish(ctx context.Context, actor *domain.User, eventType events.EventType, projectID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if actor != nil {
		event.Actor = events.Actor{UserID: actor.ID, Username: actor.Username, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
