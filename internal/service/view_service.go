package service

import (
	"context"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// ViewService builds the role-scoped read projections each dashboard
// consumes. Views are recomputed from the raw collections on every call;
// nothing here is stored. The developer-to-projects relation in
// particular is derived from phase assignments, never from the mirrored
// list on the developer record.
type ViewService struct {
	repos *repository.Repositories
}

// NewViewService builds the service.
func NewViewService(repos *repository.Repositories) *ViewService {
	return &ViewService{repos: repos}
}

// ProjectsFor returns the projects visible to the user.
func (s *ViewService) ProjectsFor(ctx context.Context, user *domain.User) ([]domain.Project, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	projects, err := s.repos.Projects.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	switch user.Role {
	case domain.RoleOwner:
		return projects, nil
	case domain.RoleManager:
		out := make([]domain.Project, 0, len(projects))
		for _, p := range projects {
			if p.ManagerID == user.ID {
				out = append(out, p)
			}
		}
		return out, nil
	case domain.RoleDeveloper:
		dev, err := s.developerForUser(ctx, user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		out := make([]domain.Project, 0, len(projects))
		for i := range projects {
			if auth.DeveloperAssignedToProject(dev, &projects[i]) {
				out = append(out, projects[i])
			}
		}
		return out, nil
	case domain.RoleClient:
		project, err := s.ClientProject(ctx, user)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return []domain.Project{}, nil
		}
		return []domain.Project{*project}, nil
	}
	return nil, apperrors.NewForbidden("unknown role")
}

// ClientProject resolves the single project a client-role user may read.
func (s *ViewService) ClientProject(ctx context.Context, user *domain.User) (*domain.Project, error) {
	if user == nil || user.Role != domain.RoleClient {
		return nil, apperrors.NewForbidden("client portal view is client-only")
	}
	projects, err := s.repos.Projects.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	clients, err := s.repos.Clients.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range projects {
		if auth.ClientOwnsProject(user, &projects[i], clients) {
			return &projects[i], nil
		}
	}
	return nil, nil
}

// TasksFor returns tasks visible to the user.
func (s *ViewService) TasksFor(ctx context.Context, user *domain.User) ([]domain.Task, error) {
	projects, err := s.ProjectsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repos.Tasks.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user.Role == domain.RoleOwner {
		return tasks, nil
	}

	visible := projectIDSet(projects)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := visible[t.ProjectID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// ProgressFor returns progress logs visible to the user.
func (s *ViewService) ProgressFor(ctx context.Context, user *domain.User) ([]domain.ProgressLog, error) {
	projects, err := s.ProjectsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	logs, err := s.repos.Progress.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user.Role == domain.RoleOwner {
		return logs, nil
	}

	visible := projectIDSet(projects)
	out := make([]domain.ProgressLog, 0, len(logs))
	for _, l := range logs {
		if _, ok := visible[l.ProjectID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// IssuesFor returns issues visible to the user.
func (s *ViewService) IssuesFor(ctx context.Context, user *domain.User) ([]domain.Issue, error) {
	projects, err := s.ProjectsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	issues, err := s.repos.Issues.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user.Role == domain.RoleOwner {
		return issues, nil
	}

	visible := projectIDSet(projects)
	out := make([]domain.Issue, 0, len(issues))
	for _, i := range issues {
		if _, ok := visible[i.ProjectID]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// DeveloperProjectIDs derives a developer's project set from phase
// assignments across all projects.
func (s *ViewService) DeveloperProjectIDs(ctx context.Context, developerID string) ([]string, error) {
	projects, err := s.repos.Projects.All(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]string, 0)
	for _, p := range projects {
		for _, phase := range p.Phases {
			if containsID(phase.AssignedDevelopers, developerID) {
				out = append(out, p.ID)
				break
			}
		}
	}
	return out, nil
}

func (s *ViewService) developerForUser(ctx context.Context, userID string) (*domain.Developer, error) {
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

func projectIDSet(projects []domain.Project) map[string]struct{} {
	set := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		set[p.ID] = struct{}{}
	}
	return set
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
