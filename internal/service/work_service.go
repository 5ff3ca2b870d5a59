package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// WorkService coordinates tasks, progress logs, and issues.
type WorkService struct {
	repos      *repository.Repositories
	audit      *AuditService
	dispatcher events.Dispatcher
}

// TaskDraft describes a new task.
type TaskDraft struct {
	ProjectID   string
	DeveloperID string
	Title       string
	Description string
	Priority    domain.TaskPriority
}

// IssueDraft describes a new issue report.
type IssueDraft struct {
	ProjectID   string
	ReporterID  string
	Type        domain.IssueType
	Title       string
	Description string
	Attachments []string
}

// NewWorkService builds the service.
func NewWorkService(repos *repository.Repositories, audit *AuditService, dispatcher events.Dispatcher) *WorkService {
	return &WorkService{repos: repos, audit: audit, dispatcher: dispatcher}
}

// CreateTask adds a task for a developer on a project. Managers create
// tasks on their projects; developers create tasks for themselves on
// projects they are assigned to.
func (s *WorkService) CreateTask(ctx context.Context, actor *domain.User, draft TaskDraft) (*domain.Task, error) {
	if draft.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	project, err := s.repos.ProjectByID(ctx, draft.ProjectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dev, err := s.repos.DeveloperByID(ctx, draft.DeveloperID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !s.canManageTask(ctx, actor, project, dev) {
		return nil, apperrors.NewForbidden("not allowed to create tasks here")
	}

	now := time.Now()
	task := domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   draft.ProjectID,
		DeveloperID: draft.DeveloperID,
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Status:      domain.TaskStatusTodo,
		Priority:    draft.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if err := s.repos.Tasks.Append(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &task, nil
}

// UpdateTaskStatus moves a task between todo, in_progress and done.
// UpdatedAt is bumped on every status change.
func (s *WorkService) UpdateTaskStatus(ctx context.Context, actor *domain.User, taskID string, status domain.TaskStatus) error {
	switch status {
	case domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone:
	default:
		return apperrors.NewValidationError("unknown task status", map[string]any{"status": status})
	}

	_, err := s.repos.Tasks.Mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		for i := range tasks {
			if tasks[i].ID != taskID {
				continue
			}
			project, err := s.repos.ProjectByID(ctx, tasks[i].ProjectID)
			if err != nil {
				return nil, err
			}
			dev, err := s.repos.DeveloperByID(ctx, tasks[i].DeveloperID)
			if err != nil {
				return nil, err
			}
			if !s.canManageTask(ctx, actor, project, dev) {
				return nil, apperrors.NewForbidden("task outside your scope")
			}
			tasks[i].Status = status
			tasks[i].UpdatedAt = time.Now()
			return tasks, nil
		}
		return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
	})
	return apperrors.MapError(err)
}

// RecordProgress appends an immutable progress log entry. Developers
// record their own progress on projects they are assigned to.
func (s *WorkService) RecordProgress(ctx context.Context, actor *domain.User, projectID, developerID, update string, hours float64, date string) (*domain.ProgressLog, error) {
	if hours < 0 {
		return nil, apperrors.NewValidationError("hours must be non-negative", map[string]any{"hours": hours})
	}
	project, err := s.repos.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dev, err := s.repos.DeveloperByID(ctx, developerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	allowed := false
	switch {
	case actor == nil:
	case actor.Role == domain.RoleOwner:
		allowed = true
	case actor.Role == domain.RoleDeveloper:
		// Developers write only their own log, and only where assigned.
		allowed = dev.UserID == actor.ID && auth.DeveloperAssignedToProject(dev, project)
	}
	if !allowed {
		return nil, apperrors.NewForbidden("progress logs are written by the assigned developer")
	}

	log := domain.ProgressLog{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		DeveloperID: developerID,
		Update:      update,
		Hours:       hours,
		Date:        date,
		CreatedAt:   time.Now(),
	}
	if err := s.repos.Progress.Append(ctx, log); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &log, nil
}

// ReportIssue files an issue against a project. Reporters are assigned
// developers or the project's client.
func (s *WorkService) ReportIssue(ctx context.Context, actor *domain.User, draft IssueDraft) (*domain.Issue, error) {
	if draft.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	switch draft.Type {
	case domain.IssueTypeBug, domain.IssueTypeBlocker, domain.IssueTypeQuery:
	default:
		return nil, apperrors.NewValidationError("unknown issue type", map[string]any{"type": draft.Type})
	}
	project, err := s.repos.ProjectByID(ctx, draft.ProjectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !s.canReport(ctx, actor, project) {
		return nil, apperrors.NewForbidden("not allowed to report issues on this project")
	}

	issue := domain.Issue{
		ID:          uuid.NewString(),
		ProjectID:   draft.ProjectID,
		ReporterID:  draft.ReporterID,
		Type:        draft.Type,
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Status:      domain.IssueStatusOpen,
		Attachments: draft.Attachments,
		CreatedAt:   time.Now(),
	}
	if err := s.repos.Issues.Append(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishIssue(ctx, actor, &issue)
	return &issue, nil
}

// UpdateIssueStatus moves an issue between open, in_progress and
// resolved. Resolution stamps ResolvedAt.
func (s *WorkService) UpdateIssueStatus(ctx context.Context, actor *domain.User, issueID string, status domain.IssueStatus) error {
	switch status {
	case domain.IssueStatusOpen, domain.IssueStatusInProgress, domain.IssueStatusResolved:
	default:
		return apperrors.NewValidationError("unknown issue status", map[string]any{"status": status})
	}

	_, err := s.repos.Issues.Mutate(ctx, func(issues []domain.Issue) ([]domain.Issue, error) {
		for i := range issues {
			if issues[i].ID != issueID {
				continue
			}
			project, err := s.repos.ProjectByID(ctx, issues[i].ProjectID)
			if err != nil {
				return nil, err
			}
			if !s.canResolve(ctx, actor, project) {
				return nil, apperrors.NewForbidden("issue outside your scope")
			}
			issues[i].Status = status
			if status == domain.IssueStatusResolved {
				now := time.Now()
				issues[i].ResolvedAt = &now
			} else {
				issues[i].ResolvedAt = nil
			}
			return issues, nil
		}
		return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
	})
	return apperrors.MapError(err)
}

// canManageTask admits the owner, the project's manager, and the owning
// developer when assigned to the project.
func (s *WorkService) canManageTask(ctx context.Context, actor *domain.User, project *domain.Project, dev *domain.Developer) bool {
	if actor == nil {
		return false
	}
	if auth.CanManageProject(actor, project) {
		return true
	}
	if actor.Role != domain.RoleDeveloper {
		return false
	}
	return dev.UserID == actor.ID && auth.DeveloperAssignedToProject(dev, project)
}

func (s *WorkService) canReport(ctx context.Context, actor *domain.User, project *domain.Project) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleDeveloper:
		dev := s.lookupDeveloper(ctx, actor.ID)
		return auth.DeveloperAssignedToProject(dev, project)
	case domain.RoleClient:
		clients, err := s.repos.Clients.All(ctx)
		if err != nil {
			return false
		}
		return auth.ClientOwnsProject(actor, project, clients)
	}
	return false
}

// canResolve admits the owner and developers assigned to the project.
// Managers are read-only over issues.
func (s *WorkService) canResolve(ctx context.Context, actor *domain.User, project *domain.Project) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleDeveloper:
		dev := s.lookupDeveloper(ctx, actor.ID)
		return auth.DeveloperAssignedToProject(dev, project)
	}
	return false
}

func (s *WorkService) lookupDeveloper(ctx context.Context, userID string) *domain.Developer {
	devs, err := s.repos.Devs.All(ctx)
	if err != nil {
		return nil
	}
	for i := range devs {
		if devs[i].UserID == userID {
			return &devs[i]
		}
	}
	return nil
}

func (s *WorkService) publishIssue(ctx context.Context, actor *domain.User, issue *domain.Issue) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventIssueReported,
		ProjectID: issue.ProjectID,
		Timestamp: time.Now(),
		Payload: events.IssueReportedPayload{
			IssueID: issue.ID,
			Type:    issue.Type,
			Title:   issue.Title,
		},
	}
	if actor != nil {
		event.Actor = events.Actor{UserID: actor.ID, Username: actor.Username, Role: actor.Role}
	}
	_ = s.dispatcher.Publish(ctx, event)
}
